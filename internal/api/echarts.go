package api

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// showParticleChart renders the current particle cloud and landmark map as
// an interactive scatter chart (HTML) using go-echarts. Particle colour
// encodes weight so the mass of the posterior is visible at a glance.
func (s *Server) showParticleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.pf.Initialized() {
		http.Error(w, "Filter not initialized", http.StatusServiceUnavailable)
		return
	}

	particles := s.pf.Particles()

	pad := 1.0
	maxWeight := 0.0
	data := make([]opts.ScatterData, 0, len(particles))
	for _, p := range particles {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y, p.Weight}})
		pad = math.Max(pad, math.Max(math.Abs(p.X), math.Abs(p.Y)))
		maxWeight = math.Max(maxWeight, p.Weight)
	}
	lmData := make([]opts.ScatterData, 0, len(s.landmarks))
	for _, lm := range s.landmarks {
		lmData = append(lmData, opts.ScatterData{Value: []interface{}{lm.X, lm.Y, 0.0}})
		pad = math.Max(pad, math.Max(math.Abs(lm.X), math.Abs(lm.Y)))
	}
	pad *= 1.1

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Particle Cloud", Theme: "dark", Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Particle Cloud", Subtitle: fmt.Sprintf("particles=%d landmarks=%d", len(data), len(lmData))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: -pad, Max: pad, Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: -pad, Max: pad, Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxWeight),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#31688e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("particles", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))
	scatter.AddSeries("landmarks", lmData, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		http.Error(w, fmt.Sprintf("Failed to render chart: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.Copy(w, &buf)
}
