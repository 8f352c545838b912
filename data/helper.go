package data

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/banachtech/finsims/transform"
	"github.com/schollz/progressbar/v3"
)

// helper function to open a json parameter file into target
func Open[T ParamFile | WaveletParams | transform.ZScoreParams](filename string, target T) (T, error) {
	file, err := os.ReadFile(filename)
	if err != nil {
		return target, err
	}
	err = json.Unmarshal(file, &target)
	if err != nil {
		return target, fmt.Errorf("decode %s: %w", filename, err)
	}
	return target, nil
}

// helper function to write v as indented json
func writeJSON(filename string, v any) error {
	b, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0644)
}

// progress bar initialization
func progressBar(length int, visible bool) *progressbar.ProgressBar {
	bar := progressbar.NewOptions(
		length,
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetVisibility(visible),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return bar
}
