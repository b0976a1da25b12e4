package upload

import (
	"sort"
	"sync"
	"time"
)

// UploadSession tracks one in-flight chunked upload.
//
// The identity fields (ID, Filename, TotalSize, ChunkSize, TotalChunks,
// Checksum, CreatedAt) are fixed at creation and safe to read without
// locking. The received-set is guarded by the session's own mutex so that
// concurrent chunk uploads, status reads, and completion see a consistent
// view.
type UploadSession struct {
	ID          string
	Filename    string
	TotalSize   int64
	ChunkSize   int64 // fixed at init; survives restarts and config changes
	TotalChunks int
	Checksum    string // client-supplied hint; replaced by the computed digest at completion
	CreatedAt   time.Time

	mu           sync.Mutex
	received     map[int]struct{}
	lastActivity time.Time
}

func newSession(id, filename string, totalSize, chunkSize int64, totalChunks int, checksum string) *UploadSession {
	now := time.Now().UTC()
	return &UploadSession{
		ID:           id,
		Filename:     filename,
		TotalSize:    totalSize,
		ChunkSize:    chunkSize,
		TotalChunks:  totalChunks,
		Checksum:     checksum,
		CreatedAt:    now,
		received:     make(map[int]struct{}),
		lastActivity: now,
	}
}

// MarkReceived records that chunk index has been acknowledged and returns
// the resulting received count. Marking the same index again is a no-op
// apart from refreshing the activity timestamp.
func (s *UploadSession) MarkReceived(index int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.received[index] = struct{}{}
	s.lastActivity = time.Now().UTC()
	return len(s.received)
}

// ReceivedCount returns the number of acknowledged chunks.
func (s *UploadSession) ReceivedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received)
}

// Received returns the acknowledged chunk indices in ascending order.
func (s *UploadSession) Received() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	indices := make([]int, 0, len(s.received))
	for i := range s.received {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// IsComplete reports whether every chunk index has been acknowledged.
func (s *UploadSession) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.received) == s.TotalChunks
}

// Missing returns the chunk indices not yet acknowledged, in ascending order.
func (s *UploadSession) Missing() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing := make([]int, 0, s.TotalChunks-len(s.received))
	for i := 0; i < s.TotalChunks; i++ {
		if _, ok := s.received[i]; !ok {
			missing = append(missing, i)
		}
	}
	return missing
}

// LastActivity returns the time of the most recent acknowledged chunk, or
// the creation time when no chunk has arrived yet.
func (s *UploadSession) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// seedReceived pre-populates the received-set from on-disk evidence. Used
// when rebuilding sessions after a restart.
func (s *UploadSession) seedReceived(indices []int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, i := range indices {
		if i >= 0 && i < s.TotalChunks {
			s.received[i] = struct{}{}
		}
	}
}
