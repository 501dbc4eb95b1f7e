package media

import (
	"strings"

	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
)

const (
	rtpMTU       = 1200
	videoClock   = 90000
	jpegPayloadT = 26
)

// payloaderFor picks the RTP payloader for a codec. Codecs pion knows get
// their standard payloader; anything else is split into MTU-sized chunks
// with the marker bit closing each frame.
func payloaderFor(mimeType string) rtp.Payloader {
	switch strings.ToLower(mimeType) {
	case strings.ToLower(webrtc.MimeTypeVP8):
		return &codecs.VP8Payloader{EnablePictureID: true}
	case strings.ToLower(webrtc.MimeTypeH264):
		return &codecs.H264Payloader{}
	default:
		return chunkPayloader{}
	}
}

type chunkPayloader struct{}

func (chunkPayloader) Payload(mtu uint16, payload []byte) [][]byte {
	if mtu == 0 || len(payload) == 0 {
		return nil
	}
	out := make([][]byte, 0, len(payload)/int(mtu)+1)
	for len(payload) > 0 {
		n := min(int(mtu), len(payload))
		chunk := make([]byte, n)
		copy(chunk, payload[:n])
		out = append(out, chunk)
		payload = payload[n:]
	}
	return out
}

func newPacketizer(mimeType string, ssrc uint32) rtp.Packetizer {
	return rtp.NewPacketizer(rtpMTU, 0, ssrc, payloaderFor(mimeType), rtp.NewRandomSequencer(), videoClock)
}

// CodecParameters returns the codec registration needed for the
// built-in JPEG encoder.
func CodecParameters() webrtc.RTPCodecParameters {
	return webrtc.RTPCodecParameters{
		RTPCodecCapability: webrtc.RTPCodecCapability{MimeType: MimeTypeJPEG, ClockRate: videoClock},
		PayloadType:        jpegPayloadT,
	}
}
