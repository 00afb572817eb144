package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xandalyze/xandalyze/internal/settings"
)

// settingsView never echoes the stored credential back to the client;
// it only reports whether one is set.
type settingsView struct {
	HasCustomAPIKey bool   `json:"has_custom_api_key"`
	Theme           string `json:"theme,omitempty"`
}

func viewOf(s settings.Settings) settingsView {
	return settingsView{
		HasCustomAPIKey: s.CustomAPIKey != "",
		Theme:           s.Theme,
	}
}

// GetSettings returns the current user settings.
func GetSettings(c *gin.Context, svc *settings.Service) {
	c.JSON(http.StatusOK, viewOf(svc.Get()))
}

type settingsPatch struct {
	CustomAPIKey *string `json:"custom_api_key,omitempty"`
	Theme        string  `json:"theme,omitempty"`
}

// PutSettings updates user settings. Sending an explicit empty
// custom_api_key clears the stored override.
func PutSettings(c *gin.Context, svc *settings.Service) {
	var patch settingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var (
		updated settings.Settings
		err     error
	)
	if patch.CustomAPIKey != nil && *patch.CustomAPIKey == "" {
		if updated, err = svc.ClearKey(ctx); err == nil && patch.Theme != "" {
			updated, err = svc.Update(ctx, settings.Settings{Theme: patch.Theme})
		}
	} else {
		upd := settings.Settings{Theme: patch.Theme}
		if patch.CustomAPIKey != nil {
			upd.CustomAPIKey = *patch.CustomAPIKey
		}
		updated, err = svc.Update(ctx, upd)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}
