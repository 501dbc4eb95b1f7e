// Package domain contains entities without logic, just meta-data
package domain

import (
	"errors"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var (
	ErrNameTooLong = errors.New("name too long")
	ErrNameEmpty   = errors.New("name empty")
)

type ParticipantID string

// Participant identifies one side of a session: the local publisher or a
// remote peer.
type Participant struct {
	ID   ParticipantID `json:"id"`
	Name string        `json:"name"`
}

func NewParticipant(name string) (*Participant, error) {
	p := &Participant{ID: ParticipantID(uuid.NewString())}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Participant) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	p.Name = name
	return nil
}
