package redis

// SetBeforeTouchWrite installs fn to run between the read and the write of Touch.
func (s *SessionStore) SetBeforeTouchWrite(fn func()) {
	s.beforeTouchWrite = fn
}
