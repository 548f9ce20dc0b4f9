package httpapi

import "net/http"

type integrationSetting struct {
	Label       string `json:"label"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Default     string `json:"default"`
}

func (s *Server) baseURL(r *http.Request) string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

// handleIntegration serves the descriptor Telex reads to install the
// monitor as an interval integration.
func (s *Server) handleIntegration(w http.ResponseWriter, r *http.Request) {
	base := s.baseURL(r)
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"date": map[string]string{
				"created_at": "2025-02-19",
				"updated_at": "2025-02-19",
			},
			"descriptions": map[string]string{
				"app_description":  "An automated monitoring system that tracks web app activity status on render free tier.",
				"app_logo":         "https://img.freepik.com/fotos-premium/ilustracao-de-renderizacao-3d-on-line-de-rastreamento-de-entrega_7209-806.jpg?w=996",
				"app_name":         "Render Inactivity Alert.",
				"app_url":          base,
				"background_color": "#HEXCODE",
			},
			"integration_category": "Monitoring & Logging",
			"integration_type":     "interval",
			"is_active":            false,
			"key_features":         []string{"- Monitor Render apps for inactivity"},
			"author":               "Rodiat Hammed",
			"settings": []integrationSetting{
				{Label: "app_url", Type: "text", Description: "URL of your Render-hosted application to monitor", Required: true},
				{Label: "webhook_url", Type: "text", Description: "Telex webhook URL for receiving notifications", Required: true},
				{Label: "inactivity_threshold", Type: "number", Description: "Minutes of inactivity before sending alert", Default: "15"},
				{Label: "interval", Type: "text", Required: true, Default: "* * * * *"},
			},
			"tick_url":   base + "/tick",
			"target_url": "",
		},
	})
}
