package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/matzehuels/chatstack/pkg/buildinfo"
	"github.com/matzehuels/chatstack/pkg/errors"
	"github.com/matzehuels/chatstack/pkg/render/sink"
	"github.com/matzehuels/chatstack/pkg/view"
)

type seriesAction int

const (
	actionToggle seriesAction = iota
	actionShow
	actionHide
)

// hoverItem is one tooltip line.
type hoverItem struct {
	view.HoverInfo
	Text string `json:"text"`
}

func (s *Server) sinkChart(vc *viewContext) sink.Chart {
	return sink.Chart{
		Bands:      vc.ctrl.Bands(),
		Scales:     vc.ctrl.Scales(),
		Dates:      vc.chart.model.Dataset().Dates,
		Normalized: s.cfg.Options.Normalize,
		Title:      s.cfg.Options.Title,
	}
}

func (s *Server) bandsJSON(vc *viewContext) ([]byte, error) {
	return sink.RenderJSON(s.sinkChart(vc), sink.WithJSONFrame(s.cfg.Options.Width, s.cfg.Options.Height))
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var page []byte
	err := s.withView(w, r, func(vc *viewContext) (bool, error) {
		var err error
		page, err = sink.RenderHTML(sink.Page{
			Title:  s.cfg.Options.Title,
			Chart:  s.sinkChart(vc),
			Width:  s.cfg.Options.Width,
			Height: s.cfg.Options.Height,
		})
		return false, err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleChart(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data []byte
		err := s.withView(w, r, func(vc *viewContext) (bool, error) {
			opts := s.cfg.Options
			opts.Formats = []string{format}
			artifacts, hit, err := s.cfg.Runner.RenderWithCacheInfo(r.Context(), s.sinkChart(vc), vc.chart.hash, vc.ctrl.State(), opts)
			if err != nil {
				return false, err
			}
			s.logger.Debug("rendered chart", "format", format, "cached", hit)
			data = artifacts[format]
			return false, nil
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", sink.ContentType(format))
		w.Write(data)
	}
}

func (s *Server) handleBands(w http.ResponseWriter, r *http.Request) {
	var doc []byte
	err := s.withView(w, r, func(vc *viewContext) (bool, error) {
		var err error
		doc, err = s.bandsJSON(vc)
		return false, err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := s.chart().model.Dataset().Write(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, buf.Bytes())
}

func (s *Server) handleSeries(action seriesAction) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index, err := strconv.Atoi(chi.URLParam(r, "index"))
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidSeries, "series index %q is not a number", chi.URLParam(r, "index")))
			return
		}

		var doc []byte
		err = s.withView(w, r, func(vc *viewContext) (bool, error) {
			var err error
			switch action {
			case actionToggle:
				_, err = vc.ctrl.OnSeriesToggle(index)
			case actionShow:
				_, err = vc.ctrl.Show(index)
			case actionHide:
				_, err = vc.ctrl.Hide(index)
			}
			if err != nil {
				return false, err
			}
			s.logger.Debug("series changed",
				"series", index,
				"shown", vc.ctrl.State().IsShown(index),
				"session", shortHash(vc.sess.ID))
			doc, err = s.bandsJSON(vc)
			return true, err
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeRawJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var doc []byte
	err := s.withView(w, r, func(vc *viewContext) (bool, error) {
		vc.ctrl.ShowAll()
		var err error
		doc, err = s.bandsJSON(vc)
		return true, err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeRawJSON(w, http.StatusOK, doc)
}

func (s *Server) handleHover(w http.ResponseWriter, r *http.Request) {
	x, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "x must be an integer date index"))
		return
	}

	var items []hoverItem
	err = s.withView(w, r, func(vc *viewContext) (bool, error) {
		infos := vc.ctrl.OnHoverAt(x)
		items = make([]hoverItem, len(infos))
		for i, info := range infos {
			items[i] = hoverItem{HoverInfo: info, Text: info.Text()}
		}
		return false, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"dataset": shortHash(s.chart().hash),
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeRawJSON(w, status, data)
}

func writeRawJSON(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}
