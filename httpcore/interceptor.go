package httpcore

// Interceptor is the hook capability surrounding a transport call.
// Session-level interceptors run before per-request ones, and both run in
// registration order. A returned error aborts the call — interceptor
// failures are never swallowed (§7).
type Interceptor interface {
	BeforeRequest(handle *PooledHandle, req *Request) error
	AfterResponse(handle *PooledHandle, req *Request, resp *Response) error
}

// InterceptorFuncs adapts two plain functions into an Interceptor, for
// callers who only need one side of the hook pair.
type InterceptorFuncs struct {
	Before func(handle *PooledHandle, req *Request) error
	After  func(handle *PooledHandle, req *Request, resp *Response) error
}

func (f InterceptorFuncs) BeforeRequest(handle *PooledHandle, req *Request) error {
	if f.Before == nil {
		return nil
	}
	return f.Before(handle, req)
}

func (f InterceptorFuncs) AfterResponse(handle *PooledHandle, req *Request, resp *Response) error {
	if f.After == nil {
		return nil
	}
	return f.After(handle, req, resp)
}
