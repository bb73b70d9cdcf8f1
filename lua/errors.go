package lua

import (
	"errors"
	gotoken "go/token"

	mscanner "modernc.org/scanner"
	"modernc.org/token"
)

// Positioned is implemented by every error that points into a source:
// lexer, parser, check and build errors.
type Positioned interface {
	error
	Position() token.Position
}

// AsErrList converts err into a position-carrying error list, the form
// multi-file tools collect and sort. Errors without a position get a zero
// one. A nil err gives a nil list.
func AsErrList(err error) mscanner.ErrList {
	if err == nil {
		return nil
	}
	var list mscanner.ErrList
	if errors.As(err, &list) {
		return list
	}
	var p Positioned
	if errors.As(err, &p) {
		return mscanner.ErrList{{Pos: gotoken.Position(p.Position()), Err: err}}
	}
	return mscanner.ErrList{{Err: err}}
}

// FirstError returns the first entry of an error list, or err itself.
func FirstError(err error) error {
	var list mscanner.ErrList
	if errors.As(err, &list) && len(list) > 0 {
		return list[0].Err
	}
	return err
}
