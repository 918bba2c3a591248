package model

import (
	"errors"
	"fmt"
)

// ErrInvalidLabel indicates a class label outside [0, NumClasses).
var ErrInvalidLabel = errors.New("model: invalid label")

// ShapeError reports an input whose dimensionality does not match the classifier.
type ShapeError struct {
	What string
	Got  int
	Want int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("model: %s has length %d, want %d", e.What, e.Got, e.Want)
}

// CheckLabel returns a wrapped ErrInvalidLabel when y is not a valid class.
func CheckLabel(y int) error {
	if y < 0 || y >= NumClasses {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidLabel, y, NumClasses)
	}
	return nil
}

func checkFeatures(x []float64) error {
	if len(x) != NumFeatures {
		return &ShapeError{What: "features", Got: len(x), Want: NumFeatures}
	}
	return nil
}
