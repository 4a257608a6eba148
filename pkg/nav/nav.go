package nav

// Routes the session subsystem can navigate to. The host UI owns the rest
// of the route table.
const (
	RouteLogin     = "/login"
	RouteDashboard = "/dashboard"
)

// Navigator is implemented by the host UI. NavigateTo must be safe to call
// from any goroutine.
type Navigator interface {
	NavigateTo(route string)
}

// Func adapts a plain function to the Navigator interface.
type Func func(route string)

func (f Func) NavigateTo(route string) {
	f(route)
}
