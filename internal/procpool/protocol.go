package procpool

// Request asks a worker to compute one work item.
type Request struct {
	Index      int `json:"index"`
	N          int `json:"n"`
	Iterations int `json:"iterations"`
}

// Response carries the result of one Request. Error is set, and Hi/Lo are
// zero, when the worker could not compute the item.
type Response struct {
	Index int    `json:"index"`
	Hi    uint64 `json:"hi"`
	Lo    uint64 `json:"lo"`
	Error string `json:"error,omitempty"`
}
