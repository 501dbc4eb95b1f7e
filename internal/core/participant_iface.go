package core

//go:generate mockgen -source=participant_iface.go -destination=mock/participant_mock.go -package=mock

import "github.com/pion/webrtc/v4"

// Publication is a track currently published by the local participant.
type Publication interface {
	TrackName() string
}

// Participant is the local side of a session: it can publish and
// unpublish named outbound tracks.
type Participant interface {
	PublishTrack(track webrtc.TrackLocal) (Publication, error)
	// UnpublishTrack must tolerate a publication that is already gone.
	UnpublishTrack(pub Publication) error
}
