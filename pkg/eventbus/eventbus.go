/*
 * Copyright (C) 2025-2025, Advanced Micro Devices, Inc. All rights reserved.
 * See LICENSE for license information.
 */

package eventbus

import (
	"sync"

	"k8s.io/klog/v2"

	v1 "github.com/AMD-AIG-AIMA/inference-scheduler/pkg/apis/v1"
)

const (
	// DefaultMailboxSize is the per-subscriber buffer used when no size is
	// configured.
	DefaultMailboxSize = 64
)

// Subscription is one subscriber's handle on the bus. Events are consumed
// from Events(); Close releases the handle and is safe to call twice.
// Closing does not drain the mailbox.
type Subscription struct {
	tenantId  string
	mailbox   chan *v1.Event
	done      chan struct{}
	closeOnce sync.Once
}

func (s *Subscription) TenantId() string {
	return s.tenantId
}

func (s *Subscription) Events() <-chan *v1.Event {
	return s.mailbox
}

func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Subscription) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Bus fans job and workflow events out to per-tenant subscribers. Delivery
// is best effort: each subscriber owns a bounded mailbox and when a publish
// would overflow it the oldest undelivered event is discarded instead of
// blocking the scheduler. Closed subscribers are reaped on the next publish.
type Bus struct {
	mu          sync.RWMutex
	mailboxSize int
	subscribers map[string]map[*Subscription]struct{}
}

func NewBus(mailboxSize int) *Bus {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}
	return &Bus{
		mailboxSize: mailboxSize,
		subscribers: make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe registers a new subscriber for the tenant's events.
func (b *Bus) Subscribe(tenantId string) *Subscription {
	sub := &Subscription{
		tenantId: tenantId,
		mailbox:  make(chan *v1.Event, b.mailboxSize),
		done:     make(chan struct{}),
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.subscribers[tenantId]; !exists {
		b.subscribers[tenantId] = make(map[*Subscription]struct{})
	}
	b.subscribers[tenantId][sub] = struct{}{}
	return sub
}

// Unsubscribe closes the subscription and removes it from the bus.
func (b *Bus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	sub.Close()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.removeLocked(sub)
}

// Publish routes the event to every live subscriber of its tenant. The call
// never blocks; under back-pressure the subscriber's oldest event is dropped.
func (b *Bus) Publish(event *v1.Event) {
	b.mu.RLock()
	subs := make([]*Subscription, 0, len(b.subscribers[event.TenantId]))
	for sub := range b.subscribers[event.TenantId] {
		subs = append(subs, sub)
	}
	b.mu.RUnlock()

	var dead []*Subscription
	for _, sub := range subs {
		if sub.isClosed() {
			dead = append(dead, sub)
			continue
		}
		b.offer(sub, event)
	}
	if len(dead) > 0 {
		b.mu.Lock()
		for _, sub := range dead {
			b.removeLocked(sub)
		}
		b.mu.Unlock()
	}
}

// SubscriberCount returns the number of live subscriptions for the tenant.
func (b *Bus) SubscriberCount(tenantId string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[tenantId])
}

func (b *Bus) offer(sub *Subscription, event *v1.Event) {
	select {
	case sub.mailbox <- event:
		return
	default:
	}
	// Mailbox full: discard the oldest undelivered event and retry once.
	select {
	case dropped := <-sub.mailbox:
		klog.V(4).Infof("subscriber mailbox full, dropping oldest event, tenant: %s, kind: %s",
			sub.tenantId, dropped.Kind)
	default:
	}
	select {
	case sub.mailbox <- event:
	default:
	}
}

func (b *Bus) removeLocked(sub *Subscription) {
	tenantSubs, exists := b.subscribers[sub.tenantId]
	if !exists {
		return
	}
	delete(tenantSubs, sub)
	if len(tenantSubs) == 0 {
		delete(b.subscribers, sub.tenantId)
	}
}
