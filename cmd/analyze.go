package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/civic-classifier/internal/domain"
)

var errNoInput = errors.New("provide a JSON request, --input, or at least one of --image, --audio, --text")

type analyzeOptions struct {
	input    string
	image    string
	audio    string
	text     string
	location string
}

func newAnalyzeCommand(a *app) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [json]",
		Short: "Analyze a single complaint",
		Long: `Analyze a single complaint and print the JSON response.

The request is read from the positional JSON argument, from --input
(a file, or - for stdin), or assembled from the individual flags. Image
and audio accept a file path, a data URL or bare base64.`,
		Example: `  civic-classifier analyze --text "sadak mein gaddha hai" --location "Ward 7"
  civic-classifier analyze --image pothole.jpg
  civic-classifier analyze '{"text":"street light not working"}'`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := opts.request(args)
			if err != nil {
				return writeFailure(cmd.OutOrStdout(), err)
			}

			comps, err := a.setup(cmd.Context())
			if err != nil {
				return writeFailure(cmd.OutOrStdout(), err)
			}

			resp := comps.Analyzer.Analyze(cmd.Context(), req)
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read the JSON request from a file (- for stdin)")
	cmd.Flags().StringVar(&opts.image, "image", "", "image file, data URL or base64")
	cmd.Flags().StringVar(&opts.audio, "audio", "", "audio file, data URL or base64")
	cmd.Flags().StringVar(&opts.text, "text", "", "complaint text")
	cmd.Flags().StringVar(&opts.location, "location", "", "free-form location")
	return cmd
}

// request assembles the analysis request. Flags override fields of a JSON
// request when both are given.
func (o *analyzeOptions) request(args []string) (*domain.Request, error) {
	req := &domain.Request{}

	switch {
	case len(args) == 1:
		if err := json.Unmarshal([]byte(args[0]), req); err != nil {
			return nil, fmt.Errorf("parse request: %w", err)
		}
	case o.input != "":
		f, closeFn, err := openInput(o.input)
		if err != nil {
			return nil, err
		}
		defer closeFn()
		if err = json.NewDecoder(f).Decode(req); err != nil {
			return nil, fmt.Errorf("parse request: %w", err)
		}
	}

	if o.image != "" {
		req.ImageData = o.image
	}
	if o.audio != "" {
		req.AudioData = o.audio
	}
	if o.text != "" {
		req.Text = o.text
	}
	if o.location != "" {
		req.Location = o.location
	}

	if !req.HasImage() && !req.HasAudio() && req.Text == "" {
		return nil, errNoInput
	}
	return req, nil
}

// writeFailure prints a success=false envelope so callers parsing stdout
// always get a record, then returns err for the exit status.
func writeFailure(w io.Writer, err error) error {
	if writeErr := writeJSON(w, &domain.Response{Success: false, Error: err.Error()}); writeErr != nil {
		return errors.Join(err, writeErr)
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
