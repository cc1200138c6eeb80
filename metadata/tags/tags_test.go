package tags

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"
	"time"

	library "github.com/kotone-fm/kotone"
	"github.com/stretchr/testify/assert"
)

// frameDuration is the duration of a single MPEG1 layer 3 frame at 44.1kHz
const frameDuration = time.Second * 1152 / 44100

// mp3Frames returns n silent MPEG1 layer 3 128kbit 44.1kHz frames
func mp3Frames(n int) []byte {
	const frameSize = 417 // 144 * 128000 / 44100
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		frame := make([]byte, frameSize)
		copy(frame, []byte{0xFF, 0xFB, 0x90, 0x64})
		buf.Write(frame)
	}
	return buf.Bytes()
}

// id3v23 returns an ID3v2.3 tag containing the text frames given
func id3v23(frames map[string]string) []byte {
	var body bytes.Buffer
	for id, text := range frames {
		body.WriteString(id)
		binary.Write(&body, binary.BigEndian, uint32(len(text)+1))
		body.Write([]byte{0, 0}) // flags
		body.WriteByte(0)        // ISO-8859-1
		body.WriteString(text)
	}

	size := body.Len()
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f),
		byte(size >> 14 & 0x7f),
		byte(size >> 7 & 0x7f),
		byte(size & 0x7f),
	}
	return append(header, body.Bytes()...)
}

func TestMP3Duration(t *testing.T) {
	assert.Zero(t, MP3Duration(nil))
	assert.Zero(t, MP3Duration([]byte("definitely not an mp3 file")))

	d := MP3Duration(mp3Frames(10))
	assert.InDelta(t, float64(frameDuration*10), float64(d), float64(time.Millisecond))
}

func TestExtract(t *testing.T) {
	ctx := context.Background()
	data := append(id3v23(map[string]string{
		"TIT2": "Some Title",
		"TPE1": "Some Artist feat. Other",
		"TALB": "Some Album",
		"TYER": "2004",
		"TCON": "Rock",
	}), mp3Frames(20)...)

	m := NewExtractor().Extract(ctx, data)
	assert.Equal(t, "Some Title", m.Title)
	assert.Equal(t, "Some Artist feat. Other", m.Artist)
	assert.Equal(t, "Some Album", m.Album)
	assert.Equal(t, 2004, m.Year)
	assert.Equal(t, library.Genres{"Rock"}, m.Genres)
	assert.InDelta(t, float64(frameDuration*20), float64(m.Duration), float64(time.Millisecond))
}

func TestExtractGarbage(t *testing.T) {
	ctx := context.Background()
	e := NewExtractor()

	assert.True(t, e.Extract(ctx, nil).IsZero())
	assert.True(t, e.Extract(ctx, []byte("garbage data that is not audio")).IsZero())
}

func TestSkipID3v2(t *testing.T) {
	tag := id3v23(map[string]string{"TIT2": "x"})
	frames := mp3Frames(1)

	assert.Equal(t, frames, skipID3v2(append(tag, frames...)))
	assert.Equal(t, frames, skipID3v2(frames))
	assert.Nil(t, skipID3v2(tag[:len(tag)-1]))
}
