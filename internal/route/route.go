// Package route decides which screen may be shown given hydration and
// authentication state, and keeps the navigation history.
package route

// Route names a screen.
type Route int

const (
	Login Route = iota
	Signup
	Home
)

func (r Route) String() string {
	switch r {
	case Login:
		return "/login"
	case Signup:
		return "/signup"
	case Home:
		return "/"
	}
	return "?"
}

// Protected reports whether r requires an authenticated session.
func (r Route) Protected() bool { return r == Home }

// Decision is the guard outcome for a protected screen.
type Decision int

const (
	Loading Decision = iota
	RedirectLogin
	Render
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect-login"
	case Render:
		return "render"
	}
	return "?"
}

// Guard never decides on auth state before hydration is done.
func Guard(ready, authenticated bool) Decision {
	if !ready {
		return Loading
	}
	if !authenticated {
		return RedirectLogin
	}
	return Render
}

// Navigator is a history stack of routes. The zero value is empty.
type Navigator struct {
	stack []Route
}

func NewNavigator(start Route) *Navigator {
	return &Navigator{stack: []Route{start}}
}

// Current returns the top of the history. An empty navigator sits on Home.
func (n *Navigator) Current() Route {
	if len(n.stack) == 0 {
		return Home
	}
	return n.stack[len(n.stack)-1]
}

func (n *Navigator) Len() int { return len(n.stack) }

func (n *Navigator) Push(r Route) {
	n.stack = append(n.stack, r)
}

// Replace swaps the current entry so Back cannot return to it.
func (n *Navigator) Replace(r Route) {
	if len(n.stack) == 0 {
		n.stack = append(n.stack, r)
		return
	}
	n.stack[len(n.stack)-1] = r
}

// Reset drops all history and starts over at r.
func (n *Navigator) Reset(r Route) {
	n.stack = []Route{r}
}

// Back pops the current entry. It reports false when there is nothing
// to go back to.
func (n *Navigator) Back() bool {
	if len(n.stack) <= 1 {
		return false
	}
	n.stack = n.stack[:len(n.stack)-1]
	return true
}

// Resolve applies the guard to the current route. While not ready it
// returns Loading and leaves history untouched; an unauthenticated visit
// to a protected route is replaced with Login.
func (n *Navigator) Resolve(ready, authenticated bool) Decision {
	cur := n.Current()
	if !cur.Protected() {
		return Render
	}
	d := Guard(ready, authenticated)
	if d == RedirectLogin {
		n.Replace(Login)
	}
	return d
}
