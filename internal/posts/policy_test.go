package posts

import "testing"

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name   string
		actor  Actor
		res    Resource
		action Action
		allow  bool
	}{
		// Create
		{name: "user cannot create", actor: Actor{ID: "1", Role: RoleUser}, action: ActionCreate, allow: false},
		{name: "creator can create", actor: Actor{ID: "1", Role: RoleCreator}, action: ActionCreate, allow: true},
		{name: "admin can create", actor: Actor{ID: "9", Role: RoleAdmin}, action: ActionCreate, allow: true},

		// Edit: strict ownership for everyone, admins included.
		{name: "creator edits own post", actor: Actor{ID: "1", Role: RoleCreator}, res: Resource{AuthorID: "1"}, action: ActionEdit, allow: true},
		{name: "creator cannot edit another's post", actor: Actor{ID: "1", Role: RoleCreator}, res: Resource{AuthorID: "2"}, action: ActionEdit, allow: false},
		{name: "admin edits own post", actor: Actor{ID: "9", Role: RoleAdmin}, res: Resource{AuthorID: "9"}, action: ActionEdit, allow: true},
		{name: "admin cannot edit another's post", actor: Actor{ID: "9", Role: RoleAdmin}, res: Resource{AuthorID: "2"}, action: ActionEdit, allow: false},
		{name: "user cannot edit own-authored resource", actor: Actor{ID: "1", Role: RoleUser}, res: Resource{AuthorID: "1"}, action: ActionEdit, allow: false},

		// Delete: admins bypass ownership, creators do not.
		{name: "admin deletes any post", actor: Actor{ID: "9", Role: RoleAdmin}, res: Resource{AuthorID: "2"}, action: ActionDelete, allow: true},
		{name: "creator deletes own post", actor: Actor{ID: "1", Role: RoleCreator}, res: Resource{AuthorID: "1"}, action: ActionDelete, allow: true},
		{name: "creator cannot delete another's post", actor: Actor{ID: "1", Role: RoleCreator}, res: Resource{AuthorID: "2"}, action: ActionDelete, allow: false},
		{name: "user cannot delete", actor: Actor{ID: "1", Role: RoleUser}, res: Resource{AuthorID: "1"}, action: ActionDelete, allow: false},

		// Comment: any known role.
		{name: "user can comment", actor: Actor{ID: "1", Role: RoleUser}, res: Resource{AuthorID: "2"}, action: ActionComment, allow: true},
		{name: "creator can comment", actor: Actor{ID: "1", Role: RoleCreator}, res: Resource{AuthorID: "2"}, action: ActionComment, allow: true},
		{name: "admin can comment", actor: Actor{ID: "9", Role: RoleAdmin}, res: Resource{AuthorID: "2"}, action: ActionComment, allow: true},

		// Fall-through
		{name: "unknown role denied", actor: Actor{ID: "1", Role: "moderator"}, action: ActionCreate, allow: false},
		{name: "unknown action denied", actor: Actor{ID: "9", Role: RoleAdmin}, res: Resource{AuthorID: "9"}, action: Action("publish"), allow: false},
		{name: "empty actor id never owns", actor: Actor{Role: RoleCreator}, res: Resource{}, action: ActionEdit, allow: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Authorize(tt.actor, tt.res, tt.action)
			if d.Allowed != tt.allow {
				t.Errorf("Authorize(%+v, %+v, %q).Allowed = %v, want %v", tt.actor, tt.res, tt.action, d.Allowed, tt.allow)
			}
			if !d.Allowed && d.Reason != ReasonUnauthorized {
				t.Errorf("denial reason = %q, want %q", d.Reason, ReasonUnauthorized)
			}
			if d.Allowed && d.Reason != "" {
				t.Errorf("allow carried reason %q, want empty", d.Reason)
			}
		})
	}
}
