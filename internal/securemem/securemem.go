// Package securemem keeps provider API keys in memguard-protected memory so
// they are not left in swap or core dumps.
package securemem

import "github.com/awnumar/memguard"

// String is a secret held in a locked memguard buffer.
type String struct {
	buf     *memguard.LockedBuffer
	invalid bool
}

// NewString copies plaintext into protected memory.
func NewString(plaintext string) *String {
	return &String{
		buf: memguard.NewBufferFromBytes([]byte(plaintext)),
	}
}

// String returns a plaintext copy in regular memory.
func (s *String) String() string {
	if s == nil || s.invalid || s.buf == nil {
		return ""
	}
	return string(s.buf.Bytes())
}

// IsEmpty reports whether the secret is empty or destroyed.
func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// Len returns the length of the secret.
func (s *String) Len() int {
	if s == nil || s.invalid || s.buf == nil {
		return 0
	}
	return len(s.buf.Bytes())
}

// Destroy wipes the secret. The String must not be used afterwards.
func (s *String) Destroy() {
	if s == nil || s.invalid {
		return
	}
	if s.buf != nil {
		s.buf.Destroy()
		s.buf = nil
	}
	s.invalid = true
}
