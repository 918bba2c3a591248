package dataset

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gradcheck/internal/model"
)

const irisHead = `sepal_length,sepal_width,petal_length,petal_width,species
5.1,3.5,1.4,0.2,setosa
7.0,3.2,4.7,1.4,versicolor
6.3,3.3,6.0,2.5,virginica
4.9,3.0,1.4,0.2,setosa
`

func TestLoadCSVWithHeaderAndNames(t *testing.T) {
	labels := &Labels{}
	samples, err := LoadCSV(context.Background(), strings.NewReader(irisHead), labels)
	require.NoError(t, err)
	require.Len(t, samples, 4)
	require.Equal(t, [model.NumFeatures]float64{5.1, 3.5, 1.4, 0.2}, samples[0].Features)
	require.Equal(t, []int{0, 1, 2, 0}, []int{samples[0].Label, samples[1].Label, samples[2].Label, samples[3].Label})
	require.Equal(t, []string{"setosa", "versicolor", "virginica"}, labels.Names())
}

func TestLoadCSVIntegerLabelsAndIDColumn(t *testing.T) {
	in := "1,5.1,3.5,1.4,0.2,0\n2,6.3,3.3,6.0,2.5,2\n"
	samples, err := LoadCSV(context.Background(), strings.NewReader(in), nil)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	require.Equal(t, 2, samples[1].Label)
	require.Equal(t, 6.3, samples[1].Features[0])
}

func TestLoadCSVErrors(t *testing.T) {
	cases := map[string]struct {
		in   string
		want error
	}{
		"label out of range": {in: "1,2,3,4,3\n", want: model.ErrInvalidLabel},
		"too many classes":   {in: "1,2,3,4,a\n1,2,3,4,b\n1,2,3,4,c\n1,2,3,4,d\n", want: ErrTooManyClasses},
		"id after name":      {in: "1,2,3,4,setosa\n1,2,3,4,0\n", want: ErrMixedLabels},
		"name after id":      {in: "1,2,3,4,2\n1,2,3,4,setosa\n", want: ErrMixedLabels},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadCSV(context.Background(), strings.NewReader(tc.in), nil)
			require.ErrorIs(t, err, tc.want)
		})
	}

	_, err := LoadCSV(context.Background(), strings.NewReader("1,2,3\n"), nil)
	var shapeErr *model.ShapeError
	require.ErrorAs(t, err, &shapeErr)

	_, err = LoadCSV(context.Background(), strings.NewReader("1,2,3,4,0\n1,x,3,4,0\n"), nil)
	require.Error(t, err)
}

func TestLoadCSVCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := LoadCSV(ctx, strings.NewReader(irisHead), nil)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestLoadDirectorySharesLabels(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.csv"), "1,2,3,4,setosa\n")
	mustWrite(t, filepath.Join(dir, "b.csv"), "1,2,3,4,virginica\n1,2,3,4,setosa\n")

	samples, labels, err := Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	require.Equal(t, []int{0, 1, 0}, []int{samples[0].Label, samples[1].Label, samples[2].Label})
	require.Equal(t, []string{"setosa", "virginica"}, labels.Names())
}

func TestLoadDirectoryRejectsMixedLabels(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "a.csv"), "1,2,3,4,setosa\n")
	mustWrite(t, filepath.Join(dir, "b.csv"), "1,2,3,4,1\n")

	_, _, err := Load(context.Background(), dir)
	require.ErrorIs(t, err, ErrMixedLabels)
	require.ErrorIs(t, err, model.ErrInvalidLabel)
}

func TestLoadTestdata(t *testing.T) {
	samples, labels, err := Load(context.Background(), filepath.Join("..", "..", "testdata", "iris.csv"))
	require.NoError(t, err)
	require.NotEmpty(t, samples)
	require.Len(t, labels.Names(), model.NumClasses)
}
