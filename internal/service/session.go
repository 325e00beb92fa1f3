// Package service 会话管理：每个浏览器会话拥有独立的 dashboard.Controller
package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-forecast-dashboard/internal/dashboard"
)

// ControllerFactory 为新会话创建控制器
type ControllerFactory func() *dashboard.Controller

type session struct {
	id         string
	controller *dashboard.Controller
	expiresAt  time.Time
}

// SessionStore 会话表，过期会话由 Cleanup 清理
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration
	factory  ControllerFactory
	log      *slog.Logger
	now      func() time.Time
}

// NewSessionStore 创建会话表
func NewSessionStore(ttl time.Duration, factory ControllerFactory, log *slog.Logger) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
		factory:  factory,
		log:      log,
		now:      time.Now,
	}
}

// Create 新建会话
func (s *SessionStore) Create() (string, *dashboard.Controller) {
	id := uuid.NewString()
	sess := &session{
		id:         id,
		controller: s.factory(),
		expiresAt:  s.now().Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	s.log.Info("创建会话", "session", id)
	return id, sess.controller
}

// expired 会话已超时且没有推送连接。有订阅者的会话视为活跃
func (sess *session) expired(now time.Time) bool {
	return now.After(sess.expiresAt) && sess.controller.Subscribers() == 0
}

// Get 获取会话并续期，不存在或已过期返回 false
func (s *SessionStore) Get(id string) (*dashboard.Controller, bool) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if sess.expired(now) {
		delete(s.sessions, id)
		sess.controller.Close()
		return nil, false
	}
	sess.expiresAt = now.Add(s.ttl)
	return sess.controller, true
}

// GetOrCreate 获取会话，不存在时新建。created 表示是否新建
func (s *SessionStore) GetOrCreate(id string) (string, *dashboard.Controller, bool) {
	if id != "" {
		if c, ok := s.Get(id); ok {
			return id, c, false
		}
	}
	newID, c := s.Create()
	return newID, c, true
}

// Cleanup 清理过期会话，返回清理数量。仍有推送连接的会话会被续期
func (s *SessionStore) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	var expired []*session
	for id, sess := range s.sessions {
		switch {
		case sess.expired(now):
			delete(s.sessions, id)
			expired = append(expired, sess)
		case now.After(sess.expiresAt):
			sess.expiresAt = now.Add(s.ttl)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.controller.Close()
	}
	if len(expired) > 0 {
		s.log.Info("清理过期会话", "count", len(expired))
	}
	return len(expired)
}

// Len 当前会话数
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
