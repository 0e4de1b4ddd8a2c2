package user

// CanDelete reports whether the requester may delete the user with
// targetID: superusers may delete anyone, everyone may delete themselves.
func CanDelete(requester *UserView, targetID int64) bool {
	return requester.IsSuperuser || requester.ID == targetID
}
