package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint(t *testing.T) {
	tests := []struct {
		name  string
		grade string
		unit  int
		want  float64
	}{
		{name: "A on 3 units", grade: "A", unit: 3, want: 15},
		{name: "B on 2 units", grade: "B", unit: 2, want: 8},
		{name: "C on 2 units", grade: "C", unit: 2, want: 6},
		{name: "D on 4 units", grade: "D", unit: 4, want: 8},
		{name: "E on 1 unit", grade: "E", unit: 1, want: 1},
		{name: "F earns nothing", grade: "F", unit: 3, want: 0},
		{name: "unknown grade earns nothing", grade: "Z", unit: 3, want: 0},
		{name: "empty grade earns nothing", grade: "", unit: 5, want: 0},
		{name: "zero unit", grade: "A", unit: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Point(tt.grade, tt.unit))
		})
	}
}
