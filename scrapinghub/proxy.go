package scrapinghub

import "context"

// Requester issues API requests. Connection implements it.
type Requester interface {
	Get(ctx context.Context, method string, format Format, params any, opts ...RequestOption) (*Result, error)
	Post(ctx context.Context, method string, format Format, params any, opts ...RequestOption) (*Result, error)
}

// Scope contributes parameters to every request made through it before
// handing the request to the object that owns the connection.
//
// AddParams must return a new map; the caller's params are never mutated.
// Keys the scope forces override the caller's.
type Scope interface {
	AddParams(params Params) Params
	RequestProxy() Requester
}

func scopedGet(ctx context.Context, s Scope, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	proxy := s.RequestProxy()
	if proxy == nil {
		return nil, ErrNotImplemented
	}
	return proxy.Get(ctx, method, format, s.AddParams(params), opts...)
}

func scopedPost(ctx context.Context, s Scope, method string, format Format, params Params, opts ...RequestOption) (*Result, error) {
	proxy := s.RequestProxy()
	if proxy == nil {
		return nil, ErrNotImplemented
	}
	return proxy.Post(ctx, method, format, s.AddParams(params), opts...)
}
