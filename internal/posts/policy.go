package posts

// Roles carried by user accounts. Only creators and admins author posts;
// everyone may comment.
const (
	RoleUser    = "user"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Actor is the authenticated identity attempting an action.
type Actor struct {
	ID   string
	Role string
}

// Resource is the policy's view of a post. AuthorID is empty for a post that
// does not exist yet (create).
type Resource struct {
	AuthorID string
}

// Action is something an actor wants to do to a post.
type Action string

const (
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionComment Action = "comment"
)

// ReasonUnauthorized tags every denial; the HTTP layer decides how much of
// that to reveal.
const ReasonUnauthorized = "unauthorized"

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }
func deny() Decision  { return Decision{Reason: ReasonUnauthorized} }

// rule is one row of the policy table: the roles it applies to, the action it
// covers, and whether the actor must own the resource.
type rule struct {
	roles     []string
	action    Action
	ownerOnly bool
}

// The ordered policy table. First match wins; no match denies.
//
// Admins bypass ownership for delete but not for edit: deleting another
// author's post is moderation, editing it would rewrite their words under
// their byline.
var rules = []rule{
	{roles: []string{RoleCreator, RoleAdmin}, action: ActionCreate},
	{roles: []string{RoleCreator, RoleAdmin}, action: ActionEdit, ownerOnly: true},
	{roles: []string{RoleAdmin}, action: ActionDelete},
	{roles: []string{RoleCreator}, action: ActionDelete, ownerOnly: true},
	{roles: []string{RoleUser, RoleCreator, RoleAdmin}, action: ActionComment},
}

// Authorize decides whether actor may perform action on res. It is a pure
// function: no I/O, no side effects, evaluated fresh per request. Callers
// must resolve the resource before asking about edit or delete; a decision
// cannot be made against a post that was never loaded.
func Authorize(actor Actor, res Resource, action Action) Decision {
	owns := actor.ID != "" && actor.ID == res.AuthorID
	for _, r := range rules {
		if r.action != action {
			continue
		}
		if r.ownerOnly && !owns {
			continue
		}
		for _, role := range r.roles {
			if actor.Role == role {
				return allow()
			}
		}
	}
	return deny()
}
