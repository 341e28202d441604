// Package format renders builder models as Java source.
package format

import (
	"encoding"

	"github.com/dhamidi/jfxbuilder/java"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(model *java.BuilderModel) error
}

var _ Encoder = (*BuilderEncoder)(nil)
