package model

import "fmt"

type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusAuthorized TransactionStatus = "authorized"
	StatusCaptured   TransactionStatus = "captured"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusRefunded   TransactionStatus = "refunded"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionAbandoned SessionStatus = "abandoned"
	SessionCompleted SessionStatus = "completed"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	StatusPending:    {StatusAuthorized, StatusFailed, StatusCancelled},
	StatusAuthorized: {StatusCaptured, StatusFailed, StatusCancelled},
	StatusCaptured:   {StatusCompleted, StatusRefunded},
	StatusCompleted:  {StatusRefunded},
}

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionActive: {SessionCompleted, SessionAbandoned},
}

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAuthorized, StatusCaptured, StatusCompleted,
		StatusFailed, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

func (s TransactionStatus) Terminal() bool {
	return len(transactionTransitions[s]) == 0
}

func (s SessionStatus) Valid() bool {
	switch s {
	case SessionActive, SessionAbandoned, SessionCompleted:
		return true
	}
	return false
}

// CanTransition is the guard shared by the order and payment workflows.
func CanTransition(from, to TransactionStatus) bool {
	return contains(transactionTransitions[from], to)
}

func CanTransitionSession(from, to SessionStatus) bool {
	return contains(sessionTransitions[from], to)
}

// TransitionPath returns the chain of statuses leading from `from` to `to`, excluding
// `from`, following the first edge that reaches the target. Used to walk a payment through
// authorized and captured on settlement.
func TransitionPath(from, to TransactionStatus) ([]TransactionStatus, error) {
	type node struct {
		status TransactionStatus
		path   []TransactionStatus
	}
	seen := map[TransactionStatus]bool{from: true}
	queue := []node{{status: from}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range transactionTransitions[cur.status] {
			if seen[next] {
				continue
			}
			path := append(append([]TransactionStatus{}, cur.path...), next)
			if next == to {
				return path, nil
			}
			seen[next] = true
			queue = append(queue, node{status: next, path: path})
		}
	}
	return nil, fmt.Errorf("no transition path from %s to %s", from, to)
}

func contains[T comparable](list []T, v T) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
