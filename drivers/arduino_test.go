package drivers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		column int
		want   []float32
	}{
		{"single", "1.5", -1, []float32{1.5}},
		{"csv", "1,2,3", -1, []float32{1, 2, 3}},
		{"mixed separators", " 3 ; 4,5\r", -1, []float32{3, 4, 5}},
		{"whitespace", " 3  4\t5\r", -1, []float32{3, 4, 5}},
		{"labels ignored", "temp,21.5,ok", -1, []float32{21.5}},
		{"column", "1,2,3", 1, []float32{2}},
		{"column out of range", "1,2", 5, nil},
		{"column not a number", "a,b", 0, nil},
		{"empty field keeps its place", "4,,6", 1, nil},
		{"after empty field", "4,,6", 2, []float32{6}},
		{"after garbled field", "7,err,9", 2, []float32{9}},
		{"trailing empty field", "1,2,", 2, nil},
		{"empty", "", -1, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLine(tt.line, tt.column))
		})
	}
}

func TestSplitFields(t *testing.T) {
	assert.Equal(t, []string{"4", "", "6"}, SplitFields("4,,6"))
	assert.Equal(t, []string{"1", "2", "3"}, SplitFields(" 1 ; 2 , 3\r"))
	assert.Equal(t, []string{"1", "2"}, SplitFields("1 \t 2"))
	assert.Nil(t, SplitFields(" \r"))
}

func TestReadTextPublishesEveryLine(t *testing.T) {
	var got []float32
	err := readText(strings.NewReader("1\n2,3\nnoise\n4\n"), -1, collect(&got))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4}, got)
}
