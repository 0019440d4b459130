package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"aibacktest/types"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type startRequest struct {
	Instrument     string  `json:"instrument"`
	Name           string  `json:"name"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	Frequency      string  `json:"frequency"`
	InitialCapital float64 `json:"initial_capital"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	runID, err := s.runner.Start(params)
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"message": "backtest started",
		"run_id":  runID,
		"status":  s.runner.Status(),
	})
}

func (req startRequest) validate() (RunParams, error) {
	for field, value := range map[string]string{
		"instrument": req.Instrument,
		"name":       req.Name,
		"start_date": req.StartDate,
		"end_date":   req.EndDate,
		"frequency":  req.Frequency,
	} {
		if value == "" {
			return RunParams{}, fmt.Errorf("missing required parameter: %s", field)
		}
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return RunParams{}, fmt.Errorf("invalid start_date: %s", req.StartDate)
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return RunParams{}, fmt.Errorf("invalid end_date: %s", req.EndDate)
	}
	if end.Before(start) {
		return RunParams{}, errors.New("end_date is before start_date")
	}

	frequency := types.Frequency(req.Frequency)
	switch frequency {
	case types.FrequencyDaily, types.FrequencyWeekly, types.FrequencyMonthly:
	default:
		return RunParams{}, fmt.Errorf("invalid frequency: %s", req.Frequency)
	}

	if req.InitialCapital <= 0 {
		return RunParams{}, errors.New("initial_capital must be positive")
	}

	return RunParams{
		Instrument:     req.Instrument,
		DisplayName:    req.Name,
		Start:          start,
		End:            end,
		Frequency:      frequency,
		InitialCapital: decimal.NewFromFloat(req.InitialCapital),
	}, nil
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.runner.Status())
}

func (s *Server) handleResults(w http.ResponseWriter, _ *http.Request) {
	result, ok := s.runner.Result()
	if !ok {
		writeError(w, http.StatusNotFound, "no backtest results available")
		return
	}
	writeJSON(w, http.StatusOK, Sanitize(result))
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	if err := s.runner.Stop(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "stop requested"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
