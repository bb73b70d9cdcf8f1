package ast

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(name string, order *[]string) Transform {
	return TransformFunc{
		N: name,
		F: func(c *Chunk) error {
			*order = append(*order, name)
			return nil
		},
	}
}

func TestChainEmpty(t *testing.T) {
	c := &Chunk{Filename: "test.lua"}
	assert.NoError(t, Chain().Transform(c))
	assert.Equal(t, "chain", Chain().Name())
}

func TestChainOrdering(t *testing.T) {
	var order []string
	c := &Chunk{}
	require.NoError(t, Chain(record("first", &order), record("second", &order), record("third", &order)).Transform(c))
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestChainMutates(t *testing.T) {
	f := NewFactory()
	add := func(name string) Transform {
		return TransformFunc{N: name, F: func(c *Chunk) error {
			c.Block.Stmts = append(c.Block.Stmts, f.Assign(f.Name(name), f.Number(1)))
			return nil
		}}
	}
	c := &Chunk{Block: f.BlockFrom()}
	require.NoError(t, Chain(add("a"), add("b")).Transform(c))
	require.Len(t, c.Block.Stmts, 2)
	assert.Equal(t, "b", First(c.Block.Stmts[1]).Raw)
}

func TestChainStopsAtError(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	failing := TransformFunc{N: "fail", F: func(*Chunk) error { return boom }}

	err := Chain(record("first", &order), failing, record("never", &order)).Transform(&Chunk{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first"}, order)
}

func TestChainOfChains(t *testing.T) {
	var order []string
	inner := Chain(record("a", &order), record("b", &order))
	outer := Chain(inner, record("c", &order))
	require.NoError(t, outer.Transform(&Chunk{}))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestVisitorTransform(t *testing.T) {
	f := NewFactory()
	c := &Chunk{Block: f.BlockFrom(
		f.CallStat(f.Call(f.Name("a"))),
		f.Assign(f.Name("x"), f.Number(1)),
		f.CallStat(f.Call(f.Name("b"))),
	)}
	drop := VisitorTransform("drop-calls", VisitorFunc(func(cur *Cursor) (Action, error) {
		if _, ok := cur.Node.(*CallStat); ok {
			cur.Delete()
		}
		return Continue, nil
	}))
	assert.Equal(t, "drop-calls", drop.Name())
	require.NoError(t, drop.Transform(c))
	require.Len(t, c.Block.Stmts, 1)
	assert.IsType(t, &Assign{}, c.Block.Stmts[0])
}
