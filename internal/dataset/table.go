package dataset

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gradcheck/internal/model"
)

var (
	// ErrTooManyClasses indicates a table names more classes than the classifier has.
	ErrTooManyClasses = fmt.Errorf("%w: too many classes", model.ErrInvalidLabel)
	// ErrMixedLabels indicates integer ids and class names in the same label column.
	ErrMixedLabels = fmt.Errorf("%w: integer and named labels mixed", model.ErrInvalidLabel)
)

// Labels maps class names to ids in order of first appearance. Integer
// labels are used as ids directly. One Labels accepts either form, not both.
type Labels struct {
	names   []string
	ids     map[string]int
	numeric bool
}

// ID resolves raw to a class id.
func (l *Labels) ID(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if v, err := strconv.Atoi(raw); err == nil {
		if len(l.names) > 0 {
			return 0, fmt.Errorf("%w: %q after names %v", ErrMixedLabels, raw, l.names)
		}
		if err := model.CheckLabel(v); err != nil {
			return 0, err
		}
		l.numeric = true
		return v, nil
	}
	if l.numeric {
		return 0, fmt.Errorf("%w: %q after integer ids", ErrMixedLabels, raw)
	}
	if id, ok := l.ids[raw]; ok {
		return id, nil
	}
	if len(l.names) >= model.NumClasses {
		return 0, fmt.Errorf("%w: %q", ErrTooManyClasses, raw)
	}
	if l.ids == nil {
		l.ids = make(map[string]int)
	}
	id := len(l.names)
	l.names = append(l.names, raw)
	l.ids[raw] = id
	return id, nil
}

// Names returns the class names seen so far, indexed by id.
func (l *Labels) Names() []string {
	return append([]string(nil), l.names...)
}

// StreamTable streams samples from a CSV reader. Each row carries the
// features in the NumFeatures columns before the last and the label in the
// last; any leading columns (such as a row id) are ignored. A first row whose
// features do not parse is treated as a header.
func StreamTable(ctx context.Context, r io.Reader, labels *Labels) (<-chan model.Sample, <-chan error) {
	if labels == nil {
		labels = &Labels{}
	}
	out := make(chan model.Sample)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		cr := csv.NewReader(bufio.NewReader(r))
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		cr.Comment = '#'

		lineNo := 0
		for {
			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			default:
			}

			record, err := cr.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				errCh <- fmt.Errorf("read table: %w", err)
				return
			}
			lineNo++
			if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
				continue
			}
			if len(record) < model.NumFeatures+1 {
				errCh <- fmt.Errorf("row %d: %w", lineNo,
					&model.ShapeError{What: "columns", Got: len(record), Want: model.NumFeatures + 1})
				return
			}

			sample, err := parseRow(record, labels)
			if err != nil {
				if lineNo == 1 && errors.Is(err, strconv.ErrSyntax) {
					continue
				}
				errCh <- fmt.Errorf("row %d: %w", lineNo, err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case out <- sample:
			}
		}
	}()

	return out, errCh
}

func parseRow(record []string, labels *Labels) (model.Sample, error) {
	var s model.Sample
	first := len(record) - 1 - model.NumFeatures
	for f := 0; f < model.NumFeatures; f++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(record[first+f]), 64)
		if err != nil {
			return s, fmt.Errorf("feature %d: %w", f, err)
		}
		s.Features[f] = v
	}
	label, err := labels.ID(record[len(record)-1])
	if err != nil {
		return s, err
	}
	s.Label = label
	return s, nil
}

// LoadCSV reads every sample from r.
func LoadCSV(ctx context.Context, r io.Reader, labels *Labels) ([]model.Sample, error) {
	samples, errCh := StreamTable(ctx, r, labels)
	var out []model.Sample
	for sample := range samples {
		out = append(out, sample)
	}
	if err := <-errCh; err != nil {
		return nil, err
	}
	return out, nil
}

// LoadFile reads every sample from the CSV file at path.
func LoadFile(ctx context.Context, path string, labels *Labels) ([]model.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open table: %w", err)
	}
	defer f.Close()

	samples, err := LoadCSV(ctx, f, labels)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}

// Load reads a single CSV file, or every table discovered beneath a
// directory in sorted order, sharing one label mapping.
func Load(ctx context.Context, path string) ([]model.Sample, *Labels, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("stat dataset: %w", err)
	}
	labels := &Labels{}
	paths := []string{path}
	if info.IsDir() {
		if paths, err = DiscoverTables(path); err != nil {
			return nil, nil, err
		}
		if len(paths) == 0 {
			return nil, nil, fmt.Errorf("no tables discovered under %s", path)
		}
	}
	var all []model.Sample
	for _, p := range paths {
		samples, err := LoadFile(ctx, p, labels)
		if err != nil {
			return nil, nil, err
		}
		all = append(all, samples...)
	}
	return all, labels, nil
}
