package client

import "github.com/speier/claudia/internal/ops"

// singleDispatcher satisfies dispatcher purely through method promotion:
// every Ops method already has the exact signature the interface wants.
type singleDispatcher struct {
	*ops.Ops
}

var _ dispatcher = singleDispatcher{}
