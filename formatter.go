package mongolog

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// Document is the structured form of a log record as persisted to storage.
type Document = bson.M

// standardKeys is the fixed key set every formatted document carries.
// External readers of the log store depend on these exact names; extras may
// never shadow them.
var standardKeys = map[string]struct{}{
	"timestamp":  {},
	"level":      {},
	"thread":     {},
	"threadName": {},
	"message":    {},
	"loggerName": {},
	"fileName":   {},
	"module":     {},
	"method":     {},
	"lineNumber": {},
	"exception":  {},
}

// Formatter converts a log record into a storable document. Formatting is
// a pure transformation and must not fail for a well-formed record.
type Formatter interface {
	Format(r *Record) Document
}

// DocumentFormatter is the default Formatter. The produced document's
// timestamp is the formatting instant in UTC, not the record's creation
// time. That matches the long-standing behavior of the stored schema.
type DocumentFormatter struct{}

// NewDocumentFormatter returns the default document formatter.
func NewDocumentFormatter() *DocumentFormatter {
	return &DocumentFormatter{}
}

// Format builds the document for a record: the fixed standard keys, an
// exception sub-document when the record carries an error, and any extras
// whose names do not collide with standard keys.
func (f *DocumentFormatter) Format(r *Record) Document {
	doc := Document{
		"timestamp":  time.Now().UTC(),
		"level":      r.Level.String(),
		"thread":     r.Thread,
		"threadName": r.ThreadName,
		"message":    r.Message,
		"loggerName": r.LoggerName,
		"fileName":   r.FileName,
		"module":     r.Module,
		"method":     r.Method,
		"lineNumber": r.LineNumber,
	}

	if r.Err != nil {
		doc["exception"] = Document{
			"message":    r.Err.Error(),
			"code":       0,
			"stackTrace": stackTrace(r.Err),
		}
	}

	for key, value := range r.Extras {
		if _, reserved := standardKeys[key]; reserved {
			continue
		}
		doc[key] = value
	}

	return doc
}

// stackTracer is the interface exposed by errors wrapped with pkg/errors.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// stackTrace renders the error's stack trace when one was captured at wrap
// time, falling back to the error's verbose rendering.
func stackTrace(err error) string {
	if st, ok := err.(stackTracer); ok {
		return fmt.Sprintf("%+v", st.StackTrace())
	}
	return fmt.Sprintf("%+v", err)
}
