package ast

import "fmt"

// Check validates an AST without modifying it.
type Check interface {
	Name() string
	Check(c *Chunk) error
}

// CheckChain runs checks in order, stopping at the first error.
type CheckChain []Check

// Run executes each check in sequence. Returns nil if all pass.
func (cc CheckChain) Run(c *Chunk) error {
	for _, ch := range cc {
		if err := ch.Check(c); err != nil {
			return err
		}
	}
	return nil
}

// LabelCheck reports goto statements with no visible label: the label
// must be in the same block or an enclosing block of the same function.
type LabelCheck struct{}

func (LabelCheck) Name() string { return "labels" }

func (LabelCheck) Check(c *Chunk) error {
	return checkFunction(c.Block)
}

// checkFunction checks one function body; nested functions start a fresh
// label scope.
func checkFunction(b *Block) error {
	if err := checkLabels(b, nil); err != nil {
		return err
	}
	return Walk(b, VisitorFunc(func(cur *Cursor) (Action, error) {
		if cur.Point == PointFuncBody {
			return Skip, checkFunction(cur.Node.(*FuncBody).Body)
		}
		return Continue, nil
	}))
}

func checkLabels(b *Block, visible map[string]bool) error {
	if b == nil {
		return nil
	}
	scope := make(map[string]bool, len(visible))
	for k := range visible {
		scope[k] = true
	}
	for _, s := range b.Stmts {
		if l, ok := s.(*Label); ok {
			scope[l.Label.Value] = true
		}
	}
	for _, s := range b.Stmts {
		var err error
		switch s := s.(type) {
		case *Goto:
			if !scope[s.Label.Value] {
				return &PosError{
					Msg: fmt.Sprintf("no visible label '%s' for goto", s.Label.Value),
					Pos: s.Goto.Pos,
				}
			}
		case *Do:
			err = checkLabels(s.Body, scope)
		case *While:
			err = checkLabels(s.Body, scope)
		case *Repeat:
			err = checkLabels(s.Body, scope)
		case *ForNum:
			err = checkLabels(s.Body, scope)
		case *ForIn:
			err = checkLabels(s.Body, scope)
		case *If:
			for _, cl := range s.Clauses {
				if err = checkLabels(cl.Body, scope); err != nil {
					break
				}
			}
			if err == nil && s.Else != nil {
				err = checkLabels(s.Else.Body, scope)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}
