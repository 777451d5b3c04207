package hlsrtsp

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// length of the stream identifier, also the filename prefix length used when
// parsing segment names back into streams
const identifierLength = 8

var (
	ErrRegistryFull = errors.New("too many concurrent streams")
	ErrStreamExists = errors.New("stream identifier already taken")
)

// Registry is the only shared mutable structure: a bounded map of live
// streams by identifier.
type Registry struct {
	mu         sync.Mutex
	streams    map[string]*Stream
	maxStreams int
}

func NewRegistry(maxStreams int) *Registry {
	return &Registry{
		streams:    map[string]*Stream{},
		maxStreams: maxStreams,
	}
}

// NewIdentifier returns a short filename safe token that is not taken by any
// live stream.
func (r *Registry) NewIdentifier() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		identifier := strings.ReplaceAll(uuid.NewString(), "-", "")[:identifierLength]
		if _, ok := r.streams[identifier]; !ok {
			return identifier
		}
	}
}

// Insert admits a stream, or rejects it when the registry is full.
func (r *Registry) Insert(stream *Stream) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.streams) >= r.maxStreams {
		return ErrRegistryFull
	}

	if _, ok := r.streams[stream.ID]; ok {
		return ErrStreamExists
	}

	r.streams[stream.ID] = stream
	return nil
}

func (r *Registry) Get(identifier string) (*Stream, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stream, ok := r.streams[identifier]
	return stream, ok
}

func (r *Registry) Remove(identifier string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.streams, identifier)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.streams)
}

// Shutdown kills every live stream, removing its files.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	streams := make([]*Stream, 0, len(r.streams))
	for _, stream := range r.streams {
		streams = append(streams, stream)
	}
	r.mu.Unlock()

	for _, stream := range streams {
		stream.Kill(true)
	}
}
