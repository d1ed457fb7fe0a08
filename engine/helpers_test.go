package engine

import (
	"math/rand"
	"testing"

	"github.com/blockberries/benor/network"
	"github.com/blockberries/benor/types"
	"github.com/stretchr/testify/require"
)

// collector keeps everything an observer is told.
type collector struct {
	records   []Record
	snapshots []Snapshot
	final     *Result
}

func (c *collector) Observe(rec Record) { c.records = append(c.records, rec) }
func (c *collector) Snapshot(snap Snapshot) { c.snapshots = append(c.snapshots, snap) }
func (c *collector) Final(res *Result) { c.final = res }

func (c *collector) ofType(typ RecordType) []Record {
	var out []Record
	for _, r := range c.records {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

func (c *collector) reset() {
	c.records = nil
	c.snapshots = nil
	c.final = nil
}

// newTestConfiguration builds nodes P1..Pn with the given inputs over a
// channel that always delivers.
func newTestConfiguration(t *testing.T, inputs ...types.Value) (*Configuration, *collector) {
	t.Helper()

	ids := types.NodeNames(len(inputs))
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		n, err := NewNode(id, inputs[i], true)
		require.NoError(t, err)
		nodes[i] = n
	}

	obs := &collector{}
	cfg, err := NewConfiguration(nodes, network.NewChannel(network.Always), rand.New(rand.NewSource(1)), obs)
	require.NoError(t, err)
	return cfg, obs
}

func mustNode(t *testing.T, cfg *Configuration, id types.NodeID) *Node {
	t.Helper()
	n, ok := cfg.Node(id)
	require.True(t, ok, "no node %s", id)
	return n
}

func vote(t *testing.T, from types.NodeID, round int, v types.Value) *types.Message {
	t.Helper()
	m, err := types.NewVote(from, round, v)
	require.NoError(t, err)
	return &m
}

func decide(t *testing.T, from types.NodeID, round int, v types.Value) *types.Message {
	t.Helper()
	m, err := types.NewDecide(from, round, v)
	require.NoError(t, err)
	return &m
}

func testParams(t *testing.T, n, f int) Params {
	t.Helper()
	p, err := NewParams(n, f)
	require.NoError(t, err)
	return p
}
