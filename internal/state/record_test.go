package state

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/gogpu/gg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAction(t *testing.T) *Action {
	t.Helper()
	a, err := NewAction(LandscapeLeft, Size{Width: 568, Height: 320}, gg.RGBA2(0.123456789, 1.0/3, 0.7, 0.55), 4.5)
	require.NoError(t, err)
	a.SetOwner("host")
	pts := []gg.Point{gg.Pt(10, 10), gg.Pt(60, 90), gg.Pt(140, 95), gg.Pt(300, 15)}
	for i := 2; i < len(pts); i++ {
		a.AppendSegment(pts[i-2], pts[i-1], pts[i])
	}
	return a
}

func TestRecordRoundTripReprojection(t *testing.T) {
	a := sampleAction(t)
	data, err := MarshalAction(a)
	require.NoError(t, err)

	b, err := UnmarshalAction(data)
	require.NoError(t, err)
	assert.Equal(t, a.ID(), b.ID())
	assert.Equal(t, a.Owner(), b.Owner())
	assert.Equal(t, a.Color(), b.Color(), "colour channels must survive exactly")
	assert.Equal(t, a.Width(), b.Width())

	sizes := []Size{{320, 568}, {568, 320}, {1024, 768}, {1, 1}}
	for o := Portrait; o <= LandscapeRight; o++ {
		for _, size := range sizes {
			want, err := a.Reproject(o, size)
			require.NoError(t, err)
			got, err := b.Reproject(o, size)
			require.NoError(t, err)
			require.Len(t, got, len(want))
			for i := range want {
				assertPoint(t, want[i].Start, got[i].Start)
				assertPoint(t, want[i].End, got[i].End)
				assertPoint(t, want[i].Control, got[i].Control)
			}
		}
	}
}

func TestRecordFieldNames(t *testing.T) {
	data, err := MarshalAction(sampleAction(t))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, k := range []string{"orientation", "size", "strokeWidth", "color", "segments"} {
		assert.Contains(t, raw, k)
	}
	assert.EqualValues(t, 3, raw["orientation"])
	assert.Equal(t, map[string]any{"r": 0.123456789, "g": 1.0 / 3, "b": 0.7, "a": 0.55}, raw["color"])
}

func TestRecordZeroSegments(t *testing.T) {
	a := newTestAction(t, Portrait, Size{Width: 10, Height: 10})
	data, err := MarshalAction(a)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"segments":[]`)

	b, err := UnmarshalAction(data)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
}

func TestRecordDecodeFailures(t *testing.T) {
	valid := `{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,` +
		`"color":{"r":0,"g":0,"b":0,"a":1},"segments":[{"start":[0,0],"end":[1,1],"control":[0.5,0.5]}]}`
	_, err := UnmarshalAction([]byte(valid))
	require.NoError(t, err)

	tests := map[string]string{
		"missing orientation": `{"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"missing size":        `{"orientation":1,"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"missing width":       `{"orientation":1,"size":{"width":10,"height":20},"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"missing color":       `{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"segments":[]}`,
		"missing alpha":       `{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0},"segments":[]}`,
		"missing segments":    `{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1}}`,
		"segment no control":  `{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[{"start":[0,0],"end":[1,1]}]}`,
		"wrong type":          `{"orientation":"portrait","size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"bad orientation":     `{"orientation":7,"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"zero size":           `{"orientation":1,"size":{"width":0,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]}`,
		"not json":            `{"orientation":`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			a, err := UnmarshalAction([]byte(in))
			assert.Nil(t, a)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestBoardRoundTrip(t *testing.T) {
	first := sampleAction(t)
	second := newTestAction(t, Portrait, Size{Width: 100, Height: 200})
	second.AppendSegment(gg.Pt(1, 2), gg.Pt(3, 4), gg.Pt(5, 6))

	var buf bytes.Buffer
	require.NoError(t, WriteBoard(&buf, []*Action{first, second}))

	loaded, err := ReadBoard(&buf)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, first.ID(), loaded[0].ID())
	assert.Equal(t, second.ID(), loaded[1].ID())
	assert.Equal(t, second.Curves(), loaded[1].Curves())
}

func TestReadBoardIsAllOrNothing(t *testing.T) {
	in := `{"version":1,"actions":[` +
		`{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"color":{"r":0,"g":0,"b":0,"a":1},"segments":[]},` +
		`{"orientation":1,"size":{"width":10,"height":20},"strokeWidth":2,"segments":[]}]}`
	actions, err := ReadBoard(strings.NewReader(in))
	assert.Nil(t, actions)
	assert.ErrorIs(t, err, ErrMalformedRecord)

	_, err = ReadBoard(strings.NewReader(`{"version":2,"actions":[]}`))
	assert.Error(t, err)
}

func TestClockStamp(t *testing.T) {
	c := NewClock()
	op := c.Stamp(ClearOp("bob"))
	assert.Equal(t, uint64(1), op.Lamport)
	assert.Equal(t, c.Site(), op.Site)

	c.Observe(10)
	assert.Equal(t, uint64(11), c.Stamp(InsertOp(sampleAction(t))).Lamport)
	c.Observe(3)
	assert.Equal(t, uint64(11), c.Now())
}

func TestInsertOpCarriesActionStamp(t *testing.T) {
	c := NewClock()
	a := sampleAction(t)
	c.StampAction(a)
	lamport, site := a.Stamp()
	assert.Equal(t, uint64(1), lamport)
	assert.Equal(t, c.Site(), site)

	op := InsertOp(a)
	assert.Equal(t, lamport, op.Lamport)
	assert.Equal(t, site, op.Site)

	del := c.Stamp(DeleteOp(a.ID()))
	assert.Equal(t, OpDeleteAction, del.Type)
	assert.Equal(t, a.ID(), del.Target)
	assert.Equal(t, uint64(2), del.Lamport)
}
