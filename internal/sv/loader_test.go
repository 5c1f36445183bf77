package sv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{"sampleId": "S1",
 "svs": [
  {"id": 1, "type": "DEL", "jcn": 1.0,
   "start": {"chromosome": "1", "position": 300, "orientation": 1, "copyNumberLowSide": 2.0},
   "end":   {"chromosome": "1", "position": 400, "orientation": -1, "copyNumberLowSide": 2.0}},
  {"id": 2, "type": "DEL", "jcn": 1.0,
   "start": {"chromosome": "1", "position": 1550, "orientation": 1, "copyNumberLowSide": 2.0},
   "end":   {"chromosome": "1", "position": 11200, "orientation": -1, "copyNumberLowSide": 2.0}},
  {"id": 3, "type": "SGL", "jcn": 0.5, "inferredSgl": true,
   "start": {"chromosome": "2", "position": 500, "orientation": 1, "copyNumberLowSide": 1.0}}
 ],
 "dbLinks": [{"first": {"svId": 1, "isStart": true}, "second": {"svId": 3, "isStart": true}}],
 "clusters": [{"id": 7, "resolvedType": "COMPLEX", "svIds": [1, 2],
   "chains": [{"id": 0, "links": [{"first": {"svId": 1, "isStart": false},
                                  "second": {"svId": 2, "isStart": true}}]}]}]}`

func TestReadSample(t *testing.T) {
	s, err := ReadSample(strings.NewReader(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "S1", s.ID)
	require.Len(t, s.SVs, 3)
	require.Len(t, s.Clusters, 2)

	c := s.Clusters[0]
	assert.Equal(t, 7, c.ID)
	require.Len(t, c.Chains, 1)
	ch := c.Chains[0]
	assert.Same(t, s.SVs[0].End(), ch.Links()[0].First())
	assert.Same(t, s.SVs[0].Start(), ch.OpenBreakend(true))

	singleton := s.Clusters[1]
	assert.Equal(t, 8, singleton.ID)
	assert.Equal(t, "SGL", singleton.ResolvedType)
	assert.Same(t, singleton, s.SVs[2].Cluster())
	assert.True(t, s.SVs[2].InferredSGL)
	assert.True(t, s.SVs[2].IsSGL())

	require.NotNil(t, s.SVs[0].Start().DBLink())
	assert.Same(t, s.SVs[2].Start(), s.SVs[0].Start().DBLink().Other(s.SVs[0].Start()))
}

func TestReadSample_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown sv in cluster",
			doc:  `{"sampleId": "S", "svs": [], "clusters": [{"id": 1, "svIds": [5]}]}`,
			want: ErrUnknownSV,
		},
		{
			name: "link to missing end",
			doc: `{"sampleId": "S", "svs": [{"id": 1, "type": "SGL", "start": {"chromosome": "1", "position": 1, "orientation": 1}}],
			       "dbLinks": [{"first": {"svId": 1, "isStart": false}, "second": {"svId": 1, "isStart": true}}]}`,
			want: ErrUnknownSV,
		},
		{
			name: "broken chain",
			doc: `{"sampleId": "S", "svs": [
			  {"id": 1, "type": "DEL", "start": {"chromosome": "1", "position": 1, "orientation": 1}, "end": {"chromosome": "1", "position": 2, "orientation": -1}},
			  {"id": 2, "type": "DEL", "start": {"chromosome": "1", "position": 3, "orientation": 1}, "end": {"chromosome": "1", "position": 4, "orientation": -1}}],
			  "clusters": [{"id": 1, "svIds": [1, 2], "chains": [{"id": 0, "links": [
			    {"first": {"svId": 1, "isStart": false}, "second": {"svId": 2, "isStart": true}},
			    {"first": {"svId": 1, "isStart": true}, "second": {"svId": 2, "isStart": false}}]}]}]}`,
			want: ErrChainBroken,
		},
		{
			name: "link within one sv",
			doc: `{"sampleId": "S", "svs": [
			  {"id": 1, "type": "DUP", "start": {"chromosome": "1", "position": 10, "orientation": -1}, "end": {"chromosome": "1", "position": 20, "orientation": 1}}],
			  "clusters": [{"id": 1, "svIds": [1], "chains": [{"id": 0, "links": [
			    {"first": {"svId": 1, "isStart": true}, "second": {"svId": 1, "isStart": false}}]}]}]}`,
			want: ErrChainBroken,
		},
		{
			name: "link across chromosomes",
			doc: `{"sampleId": "S", "svs": [
			  {"id": 1, "type": "BND", "start": {"chromosome": "1", "position": 1, "orientation": 1}, "end": {"chromosome": "2", "position": 2, "orientation": -1}},
			  {"id": 2, "type": "BND", "start": {"chromosome": "3", "position": 3, "orientation": 1}, "end": {"chromosome": "4", "position": 4, "orientation": -1}}],
			  "clusters": [{"id": 1, "svIds": [1, 2], "chains": [{"id": 0, "links": [
			    {"first": {"svId": 1, "isStart": false}, "second": {"svId": 2, "isStart": true}}]}]}]}`,
			want: ErrChainBroken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSample(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := ReadSample(strings.NewReader(`{"svs": [{"id": 1, "type": "XYZ"}]}`))
	assert.Error(t, err)
	_, err = ReadSample(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestLoadSample_Gzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "S1.json.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sampleDoc))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	s, err := LoadSample(path)
	require.NoError(t, err)
	assert.Len(t, s.SVs, 3)

	_, err = LoadSample(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
