package repository

import "log/slog"

// Repositories bundles every repository backed by one database.
type Repositories struct {
	Users         UserRepository
	Profiles      ProfileRepository
	Documents     DocumentRepository
	Verifications VerificationRepository
	Roles         RoleRepository
	Listings      ListingRepository
}

func NewRepositories(db *DB, logger *slog.Logger) Repositories {
	return Repositories{
		Users:         NewUserRepository(db, logger),
		Profiles:      NewProfileRepository(db, logger),
		Documents:     NewDocumentRepository(db, logger),
		Verifications: NewVerificationRepository(db, logger),
		Roles:         NewRoleRepository(db, logger),
		Listings:      NewListingRepository(db, logger),
	}
}
