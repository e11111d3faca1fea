package mcl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssociationStrings(t *testing.T) {
	t.Parallel()

	var p Particle
	p.SetAssociations([]int{7, 3, 12}, []float64{1.5, 2, -0.25}, []float64{0, 4.5, 9})

	assert.Equal(t, "7 3 12", p.AssociationsString())
	assert.Equal(t, "1.5 2 -0.25", p.SenseXString())
	assert.Equal(t, "0 4.5 9", p.SenseYString())
}

func TestAssociationStringsEmpty(t *testing.T) {
	t.Parallel()

	var p Particle
	assert.Equal(t, "", p.AssociationsString())
	assert.Equal(t, "", p.SenseXString())
	assert.Equal(t, "", p.SenseYString())
}

func TestCloneIsolatesDiagnostics(t *testing.T) {
	t.Parallel()

	var p Particle
	p.SetAssociations([]int{1, 2}, []float64{1, 2}, []float64{3, 4})

	c := p.clone()
	c.Associations[0] = 99
	c.SenseX[0] = 99
	c.SenseY[0] = 99

	assert.Equal(t, 1, p.Associations[0])
	assert.Equal(t, 1.0, p.SenseX[0])
	assert.Equal(t, 3.0, p.SenseY[0])
}
