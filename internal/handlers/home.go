package handlers

import (
	"html/template"
	"net/http"
	"time"

	"github.com/ostac/heatseeker/internal/heat"
	"github.com/ostac/heatseeker/internal/logger"
	"github.com/ostac/heatseeker/internal/metric"
	"github.com/ostac/heatseeker/internal/utils"
)

// HomeHandler serves the heatmap UI. The template is re-parsed per request so
// web tweaks need no rebuild.
func (h *OptionsHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	funcMap := template.FuncMap{
		"appTitle": func() string { return "HeatSeeker — Follow The Money" },
		"palette":  func() []string { return heat.Palette[:] },
		"metrics": func() []string {
			return []string{string(metric.NetOI), string(metric.Notional), string(metric.NetGEX)}
		},
		"defaultExpiration": func() string { return utils.NextMonthlyExpiration(time.Now()) },
		"defaultIV":         func() float64 { return h.cfg.Grid.DefaultIV * 100 },
		"expirationLimit":   func() int { return h.cfg.Grid.ExpirationLimit },
		"providerName":      func() string { return h.market.Name() },
	}

	tmpl, err := template.New("home.html").Funcs(funcMap).ParseFiles("web/templates/home.html")
	if err != nil {
		logger.Errorf("template error: %v", err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, nil); err != nil {
		logger.Errorf("template execution error: %v", err)
	}
}
