package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Dan9191/hallbridge/internal/service"
)

// settingValue accepts a setting value written either as a JSON string or a JSON number
type settingValue string

func (v *settingValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = settingValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*v = settingValue(strings.TrimSpace(n.String()))
	return nil
}

type settingsRequest struct {
	Settings []struct {
		Key      string       `json:"key"`
		Value    settingValue `json:"value"`
		Category string       `json:"category"`
	} `json:"settings"`
}

// GetSettings lists all settings
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.ListSettings(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"settings": settings})
}

// PutSettings upserts settings in bulk
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	inputs := make([]service.SettingInput, 0, len(req.Settings))
	for _, s := range req.Settings {
		inputs = append(inputs, service.SettingInput{Key: s.Key, Value: string(s.Value), Category: s.Category})
	}
	if err := h.svc.SetSettings(r.Context(), identity(r), inputs); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeMessage(w, http.StatusOK, "Settings updated")
}
