package client

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/anime-shed/ui-critic-go/pkg/models"

	_ "golang.org/x/image/webp"
)

// SelectedFile is an image the user picked or dropped
type SelectedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Preview describes the selected image as decoded locally
type Preview struct {
	Width  int
	Height int
	Format string
}

// State is the whole client view. Transitions return a new State and never
// modify the receiver.
type State struct {
	File     *SelectedFile
	Preview  *Preview
	Feedback *models.AnalysisResult
	Err      string
	Loading  bool
}

// CanAnalyze reports whether an analysis may be started
func (s State) CanAnalyze() bool {
	return s.File != nil && !s.Loading
}

// Selected replaces everything with a fresh selection. A file whose header cannot
// be decoded is still selectable; the server has the final word on its type.
func Selected(file SelectedFile) State {
	f := file
	st := State{File: &f}
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(file.Data)); err == nil {
		st.Preview = &Preview{Width: cfg.Width, Height: cfg.Height, Format: format}
	}
	return st
}

// Started marks an in-flight request and clears stale feedback and errors
func (s State) Started() State {
	return State{File: s.File, Preview: s.Preview, Loading: true}
}

// Succeeded stores the feedback of a finished request
func (s State) Succeeded(result *models.AnalysisResult) State {
	return State{File: s.File, Preview: s.Preview, Feedback: result}
}

// Failed stores an error message of a finished request
func (s State) Failed(msg string) State {
	return State{File: s.File, Preview: s.Preview, Err: msg}
}

// String renders the preview line shown by the CLI
func (p *Preview) String() string {
	if p == nil {
		return "no preview"
	}
	return fmt.Sprintf("%s %dx%d", p.Format, p.Width, p.Height)
}
