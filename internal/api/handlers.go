package api

import (
	"net/http"
	"time"

	"nrgchamp/hotelac/internal/engine"
	"nrgchamp/hotelac/internal/roomstore"
)

type powerOnRequest struct {
	RoomID      int      `json:"roomId"`
	CurrentTemp *float64 `json:"currentTemp,omitempty"`
}

func (s *Server) powerOn(w http.ResponseWriter, r *http.Request) {
	var req powerOnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeResult(w, s.eng.PowerOn(req.RoomID, req.CurrentTemp))
}

type roomIDRequest struct {
	RoomID int `json:"roomId"`
}

func (s *Server) powerOff(w http.ResponseWriter, r *http.Request) {
	var req roomIDRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeResult(w, s.eng.PowerOff(req.RoomID))
}

type changeTempRequest struct {
	RoomID     int     `json:"roomId"`
	TargetTemp float64 `json:"targetTemp"`
}

func (s *Server) changeTemp(w http.ResponseWriter, r *http.Request) {
	var req changeTempRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeResult(w, s.eng.ChangeTemp(req.RoomID, req.TargetTemp))
}

type changeSpeedRequest struct {
	RoomID   int    `json:"roomId"`
	FanSpeed string `json:"fanSpeed"`
}

func (s *Server) changeSpeed(w http.ResponseWriter, r *http.Request) {
	var req changeSpeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeResult(w, s.eng.ChangeSpeed(req.RoomID, roomstore.FanSpeed(req.FanSpeed)))
}

type changeModeRequest struct {
	RoomID int    `json:"roomId"`
	Mode   string `json:"mode"`
}

func (s *Server) changeMode(w http.ResponseWriter, r *http.Request) {
	var req changeModeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	writeResult(w, s.eng.ChangeMode(req.RoomID, roomstore.Mode(req.Mode)))
}

// roomStateResponse dual-aliases the temperature, fan speed, mode, queue
// state and total cost fields for legacy snake_case/camelCase
// compatibility; roomId, acOn, servingSeconds and waitingSeconds have a
// single name.
type roomStateResponse struct {
	RoomID int `json:"roomId"`

	CurrentTempSnake float64 `json:"current_temp"`
	CurrentTemp      float64 `json:"currentTemp"`
	TargetTempSnake  float64 `json:"target_temp"`
	TargetTemp       float64 `json:"targetTemp"`
	FanSpeedSnake    string  `json:"fan_speed"`
	FanSpeed         string  `json:"fanSpeed"`
	ACModeSnake      string  `json:"ac_mode"`
	Mode             string  `json:"mode"`

	ACOn           bool   `json:"acOn"`
	QueueStateName string `json:"queueState"`
	State          string `json:"state"`

	ServingSeconds float64 `json:"servingSeconds"`
	WaitingSeconds float64 `json:"waitingSeconds"`

	TotalCostSnake float64 `json:"total_cost"`
	TotalCost      float64 `json:"totalCost"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	roomID, ok := parseRoomID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing or invalid roomId")
		return
	}
	view, result := s.eng.RequestState(roomID)
	if !result.IsOK() {
		writeResult(w, result)
		return
	}

	total := view.SettledCost + view.PendingCost + view.DailyRateDue
	resp := roomStateResponse{
		RoomID:           view.Room.ID,
		CurrentTempSnake: view.Room.CurrentTemp,
		CurrentTemp:      view.Room.CurrentTemp,
		TargetTempSnake:  view.Room.TargetTemp,
		TargetTemp:       view.Room.TargetTemp,
		FanSpeedSnake:    string(view.Room.FanSpeed),
		FanSpeed:         string(view.Room.FanSpeed),
		ACModeSnake:      string(view.Room.Mode),
		Mode:             string(view.Room.Mode),
		ACOn:             view.Room.ACOn,
		QueueStateName:   string(view.QueueState),
		State:            string(view.QueueState),
		ServingSeconds:   view.ServingSeconds,
		WaitingSeconds:   view.WaitingSeconds,
		TotalCostSnake:   total,
		TotalCost:        total,
	}
	writeJSON(w, http.StatusOK, resp)
}

type queueEntryResponse struct {
	RoomID          int     `json:"roomId"`
	FanSpeedSnake   string  `json:"fan_speed"`
	FanSpeed        string  `json:"fanSpeed"`
	ACModeSnake     string  `json:"ac_mode"`
	Mode            string  `json:"mode"`
	TargetTempSnake float64 `json:"target_temp"`
	TargetTemp      float64 `json:"targetTemp"`
	Seconds         float64 `json:"seconds"`
}

type scheduleStatusResponse struct {
	Capacity  int                  `json:"capacity"`
	TimeSlice float64              `json:"timeSliceSeconds"`
	Serving   []queueEntryResponse `json:"serving"`
	Waiting   []queueEntryResponse `json:"waiting"`
}

func (s *Server) monitorStatus(w http.ResponseWriter, r *http.Request) {
	view := s.eng.ScheduleStatus()
	writeJSON(w, http.StatusOK, scheduleStatusResponse{
		Capacity:  view.Capacity,
		TimeSlice: view.TimeSlice,
		Serving:   queueEntriesResponse(view.Serving),
		Waiting:   queueEntriesResponse(view.Waiting),
	})
}

func queueEntriesResponse(entries []engine.QueueStatusEntry) []queueEntryResponse {
	out := make([]queueEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, queueEntryResponse{
			RoomID:          e.RoomID,
			FanSpeedSnake:   string(e.FanSpeed),
			FanSpeed:        string(e.FanSpeed),
			ACModeSnake:     string(e.Mode),
			Mode:            string(e.Mode),
			TargetTempSnake: e.TargetTemp,
			TargetTemp:      e.TargetTemp,
			Seconds:         e.Seconds,
		})
	}
	return out
}

type setSpeedRequest struct {
	Speed float64 `json:"speed"`
}

func (s *Server) testSetSpeed(w http.ResponseWriter, r *http.Request) {
	var req setSpeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	s.eng.Clock().SetSpeed(req.Speed)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type jumpRequest struct {
	AddMinutes float64 `json:"add_minutes"`
}

func (s *Server) testJump(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	clk := s.eng.Clock()
	clk.JumpTo(clk.Now().Add(time.Duration(req.AddMinutes * float64(time.Minute))))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) testPause(w http.ResponseWriter, r *http.Request) {
	s.eng.Clock().Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) testResume(w http.ResponseWriter, r *http.Request) {
	s.eng.Clock().Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type timeStatusResponse struct {
	Now    time.Time `json:"now"`
	Speed  float64   `json:"speed"`
	Paused bool      `json:"paused"`
}

func (s *Server) testTimeStatus(w http.ResponseWriter, r *http.Request) {
	clk := s.eng.Clock()
	writeJSON(w, http.StatusOK, timeStatusResponse{
		Now: clk.Now(), Speed: clk.Speed(), Paused: clk.Paused(),
	})
}

type initRoomRequest struct {
	RoomID      int      `json:"roomId"`
	Temperature *float64 `json:"temperature,omitempty"`
	DefaultTemp *float64 `json:"defaultTemp,omitempty"`
	DailyRate   *float64 `json:"dailyRate,omitempty"`
}

func (s *Server) testInitRoom(w http.ResponseWriter, r *http.Request) {
	var req initRoomRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	_, err := s.eng.Store().Update(req.RoomID, func(room *roomstore.Room) {
		if req.Temperature != nil {
			room.CurrentTemp = *req.Temperature
		}
		if req.DefaultTemp != nil {
			room.DefaultTemp = *req.DefaultTemp
		}
		if req.DailyRate != nil {
			room.DailyRate = *req.DailyRate
		}
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
