package ast

// Transform rewrites a chunk in place.
type Transform interface {
	Name() string
	Transform(c *Chunk) error
}

// TransformFunc adapts a named function to the Transform interface.
type TransformFunc struct {
	N string
	F func(*Chunk) error
}

func (t TransformFunc) Name() string             { return t.N }
func (t TransformFunc) Transform(c *Chunk) error { return t.F(c) }

// Chain composes transforms left-to-right into a single Transform,
// stopping at the first error.
func Chain(transforms ...Transform) Transform {
	return TransformFunc{
		N: "chain",
		F: func(c *Chunk) error {
			for _, t := range transforms {
				if err := t.Transform(c); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// VisitorTransform runs a Visitor over the chunk as a Transform.
func VisitorTransform(name string, v Visitor) Transform {
	return TransformFunc{
		N: name,
		F: func(c *Chunk) error { return Walk(c, v) },
	}
}
