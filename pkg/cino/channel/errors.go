package channel

import (
	"fmt"
	"strings"
)

// MemberError is the failure of one channel in a Tee.
type MemberError struct {
	Index int
	Err   error
}

// Error implements error.
func (e *MemberError) Error() string {
	return fmt.Sprintf("channel %d: %v", e.Index, e.Err)
}

// TeeError collects failures of Tee members for one operation.
// Members which succeeded are not listed.
type TeeError struct {
	Op      string
	Members []*MemberError
}

// Error implements error.
func (e *TeeError) Error() string {
	if len(e.Members) == 1 {
		return e.Op + " " + e.Members[0].Error()
	}
	msgs := make([]string, len(e.Members))
	for n, m := range e.Members {
		msgs[n] = m.Error()
	}
	return fmt.Sprintf("%s failed on %d channels: %s", e.Op, len(e.Members), strings.Join(msgs, "; "))
}

// Failed tells whether the channel at index failed.
func (e *TeeError) Failed(index int) bool {
	for _, m := range e.Members {
		if m.Index == index {
			return true
		}
	}
	return false
}

func (e *TeeError) add(index int, err error) {
	if err != nil {
		e.Members = append(e.Members, &MemberError{Index: index, Err: err})
	}
}

func (e *TeeError) errorOrNil() error {
	if len(e.Members) == 0 {
		return nil
	}
	return e
}
