package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/constants"
	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	GetActiveProfile(ctx context.Context, userID string) (*entity.Profile, error)
	ListProfiles(ctx context.Context, userID string) ([]*entity.Profile, error)
	CreateProfile(ctx context.Context, userID string, profileType constants.ProfileType, details entity.Details, active bool) (*entity.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, patch entity.ProfilePatch) (*entity.Profile, error)
	SwitchActiveProfile(ctx context.Context, userID string, profileID uuid.UUID) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context) (map[constants.ProfileType]int, error)
}

type profileRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewProfileRepository(db *DB, logger *slog.Logger) ProfileRepository {
	return &profileRepository{
		db:     db,
		logger: logger,
	}
}

// profileSelector joins the base row with both variant tables; exactly one
// side of the join is populated for a given profile.
func (r *profileRepository) profileSelector() (*entsql.Selector, *entsql.SelectTable) {
	b := r.db.builder()
	p := b.Table("profiles")
	ind := b.Table("individual_profiles").As("ip")
	biz := b.Table("business_profiles").As("bp")
	sel := b.Select(
		p.C("id"), p.C("user_id"), p.C("profile_type"), p.C("verification_status"),
		p.C("active"), p.C("resubmissions"), p.C("created_at"), p.C("updated_at"),
		ind.C("first_name"), ind.C("last_name"), ind.C("gender"), ind.C("birth_date"),
		ind.C("phone"), ind.C("address"), ind.C("avatar_url"),
		biz.C("legal_name"), biz.C("registration_number"), biz.C("contact_phone"),
		biz.C("address"), biz.C("website"),
	).
		From(p).
		LeftJoin(ind).On(p.C("id"), ind.C("profile_id")).
		LeftJoin(biz).On(p.C("id"), biz.C("profile_id"))
	return sel, p
}

func scanProfile(rows *entsql.Rows) (*entity.Profile, error) {
	var (
		p                                         entity.Profile
		id, profileType, status                   string
		createdAt, updatedAt                      int64
		firstName, lastName, gender, birth, phone sql.NullString
		indAddress, avatar                        sql.NullString
		legalName, regNumber, contactPhone        sql.NullString
		bizAddress, website                       sql.NullString
	)
	err := rows.Scan(
		&id, &p.UserID, &profileType, &status,
		&p.Active, &p.Resubmissions, &createdAt, &updatedAt,
		&firstName, &lastName, &gender, &birth, &phone, &indAddress, &avatar,
		&legalName, &regNumber, &contactPhone, &bizAddress, &website,
	)
	if err != nil {
		return nil, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	p.Type = constants.ProfileType(profileType)
	p.VerificationStatus = constants.VerificationStatus(status)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)

	switch p.Type {
	case constants.ProfileTypeIndividual:
		p.Details = &entity.IndividualDetails{
			FirstName: firstName.String,
			LastName:  lastName.String,
			Gender:    gender.String,
			BirthDate: birth.String,
			Phone:     phone.String,
			Address:   indAddress.String,
			AvatarURL: stringPtr(avatar),
		}
	case constants.ProfileTypeBusiness:
		p.Details = &entity.BusinessDetails{
			LegalName:          legalName.String,
			RegistrationNumber: regNumber.String,
			ContactPhone:       contactPhone.String,
			Address:            bizAddress.String,
			Website:            stringPtr(website),
		}
	default:
		return nil, common.InternalErrorf(common.ErrDatabase, "profile %s has unknown type %q", id, profileType)
	}
	return &p, nil
}

func (r *profileRepository) queryProfiles(ctx context.Context, conn dialect.ExecQuerier, sel *entsql.Selector) ([]*entity.Profile, error) {
	query, args := sel.Query()
	var out []*entity.Profile
	err := queryRows(ctx, conn, query, args, func(rows *entsql.Rows) error {
		p, err := scanProfile(rows)
		if err != nil {
			return err
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func (r *profileRepository) getByID(ctx context.Context, conn dialect.ExecQuerier, id uuid.UUID) (*entity.Profile, error) {
	sel, p := r.profileSelector()
	sel.Where(entsql.EQ(p.C("id"), id.String()))
	list, err := r.queryProfiles(ctx, conn, sel)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFoundErrorf("profile %s not found", id)
	}
	return list[0], nil
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	p, err := r.getByID(ctx, r.db.drv, id)
	if err != nil && !isNotFound(err) {
		r.logger.Error("failed to get profile", "profile_id", id, "error", err)
	}
	return p, err
}

func (r *profileRepository) GetActiveProfile(ctx context.Context, userID string) (*entity.Profile, error) {
	sel, p := r.profileSelector()
	sel.Where(entsql.And(
		entsql.EQ(p.C("user_id"), userID),
		entsql.EQ(p.C("active"), true),
	))
	list, err := r.queryProfiles(ctx, r.db.drv, sel)
	if err != nil {
		r.logger.Error("failed to get active profile", "user_id", userID, "error", err)
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.NotFoundErrorf("no active profile for user %s", userID)
	}
	return list[0], nil
}

func (r *profileRepository) ListProfiles(ctx context.Context, userID string) ([]*entity.Profile, error) {
	sel, p := r.profileSelector()
	sel.Where(entsql.EQ(p.C("user_id"), userID)).
		OrderBy(p.C("created_at"), p.C("id"))
	list, err := r.queryProfiles(ctx, r.db.drv, sel)
	if err != nil {
		r.logger.Error("failed to list profiles", "user_id", userID, "error", err)
		return nil, err
	}
	return list, nil
}

// CreateProfile inserts the base row, the variant row and the OWNER role in
// one transaction. A second profile of the same type for the user is a
// conflict. A requested active flag is dropped when the user already has an
// active profile.
func (r *profileRepository) CreateProfile(ctx context.Context, userID string, profileType constants.ProfileType, details entity.Details, active bool) (*entity.Profile, error) {
	if details == nil {
		details = entity.EmptyDetails(profileType)
		if details == nil {
			return nil, common.ValidationErrorf("profile type %q is not supported", profileType)
		}
	}
	if details.ProfileType() != profileType {
		return nil, common.ValidationErrorf("%s fields given for a %s profile", details.ProfileType(), profileType)
	}
	entity.NormalizeDetails(details)
	if err := entity.ValidateDetails(details); err != nil {
		return nil, err
	}

	id, err := r.insertProfile(ctx, userID, profileType, details, active)
	if err != nil && active && isUniqueViolation(err) {
		// A concurrent create took the active slot; the type may still be free.
		id, err = r.insertProfile(ctx, userID, profileType, details, false)
	}
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("profile already exists", "user_id", userID, "type", profileType)
			return nil, common.ConflictErrorf("a %s profile already exists for this user", profileType)
		}
		r.logger.Error("failed to create profile", "user_id", userID, "type", profileType, "error", err)
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// insertProfile writes the base row, the variant row and the OWNER role. When
// active is requested it is only granted if the user has no active profile yet.
func (r *profileRepository) insertProfile(ctx context.Context, userID string, profileType constants.ProfileType, details entity.Details, active bool) (uuid.UUID, error) {
	id := newID()
	now := toMillis(time.Now())
	b := r.db.builder()
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		if active {
			hasActive, err := r.hasActiveProfile(ctx, tx, userID)
			if err != nil {
				return err
			}
			active = !hasActive
		}
		query, args := b.Insert("profiles").
			Columns("id", "user_id", "profile_type", "verification_status", "active", "resubmissions", "created_at", "updated_at").
			Values(id.String(), userID, string(profileType), string(constants.VerificationPending), active, 0, now, now).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}

		var variant *entsql.InsertBuilder
		switch d := details.(type) {
		case *entity.IndividualDetails:
			variant = b.Insert("individual_profiles").
				Columns("profile_id", "first_name", "last_name", "gender", "birth_date", "phone", "address", "avatar_url").
				Values(id.String(), d.FirstName, d.LastName, d.Gender, d.BirthDate, d.Phone, d.Address, nullString(d.AvatarURL))
		case *entity.BusinessDetails:
			variant = b.Insert("business_profiles").
				Columns("profile_id", "legal_name", "registration_number", "contact_phone", "address", "website").
				Values(id.String(), d.LegalName, d.RegistrationNumber, d.ContactPhone, d.Address, nullString(d.Website))
		}
		query, args = variant.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}

		query, args = b.Insert("profile_role_assignments").
			Columns("profile_id", "role", "granted_by", "granted_at").
			Values(id.String(), string(constants.RoleOwner), userID, now).
			Query()
		return tx.Exec(ctx, query, args, nil)
	})
	return id, err
}

func (r *profileRepository) hasActiveProfile(ctx context.Context, conn dialect.ExecQuerier, userID string) (bool, error) {
	b := r.db.builder()
	t := b.Table("profiles")
	query, args := b.Select(t.C("id")).
		From(t).
		Where(entsql.And(entsql.EQ(t.C("user_id"), userID), entsql.EQ(t.C("active"), true))).
		Limit(1).
		Query()
	found := false
	err := queryRows(ctx, conn, query, args, func(*entsql.Rows) error {
		found = true
		return nil
	})
	return found, err
}

// UpdateProfile applies patch to the variant row and bumps updated_at in one
// transaction; nothing is written when validation fails.
func (r *profileRepository) UpdateProfile(ctx context.Context, id uuid.UUID, patch entity.ProfilePatch) (*entity.Profile, error) {
	b := r.db.builder()
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		current, err := r.getByID(ctx, tx, id)
		if err != nil {
			return err
		}
		next, err := entity.ApplyPatch(current.Details, patch)
		if err != nil {
			return err
		}
		if err := entity.ValidateDetails(next); err != nil {
			return err
		}

		var upd *entsql.UpdateBuilder
		switch d := next.(type) {
		case *entity.IndividualDetails:
			upd = b.Update("individual_profiles").
				Set("first_name", d.FirstName).
				Set("last_name", d.LastName).
				Set("gender", d.Gender).
				Set("birth_date", d.BirthDate).
				Set("phone", d.Phone).
				Set("address", d.Address).
				Set("avatar_url", nullString(d.AvatarURL))
		case *entity.BusinessDetails:
			upd = b.Update("business_profiles").
				Set("legal_name", d.LegalName).
				Set("registration_number", d.RegistrationNumber).
				Set("contact_phone", d.ContactPhone).
				Set("address", d.Address).
				Set("website", nullString(d.Website))
		}
		query, args := upd.Where(entsql.EQ("profile_id", id.String())).Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}

		query, args = b.Update("profiles").
			Set("updated_at", toMillis(time.Now())).
			Where(entsql.EQ("id", id.String())).
			Query()
		return tx.Exec(ctx, query, args, nil)
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.Error("failed to update profile", "profile_id", id, "error", err)
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// SwitchActiveProfile deactivates the user's current profile and activates
// profileID in one transaction. On Postgres the user's rows are locked first
// so concurrent switches serialize.
func (r *profileRepository) SwitchActiveProfile(ctx context.Context, userID string, profileID uuid.UUID) error {
	b := r.db.builder()
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		t := b.Table("profiles")
		sel := b.Select(t.C("id"), t.C("user_id")).
			From(t).
			Where(entsql.EQ(t.C("user_id"), userID))
		if r.db.dialect == dialect.Postgres {
			sel.ForUpdate()
		}
		query, args := sel.Query()
		owned := false
		err := queryRows(ctx, tx, query, args, func(rows *entsql.Rows) error {
			var id, owner string
			if err := rows.Scan(&id, &owner); err != nil {
				return err
			}
			if id == profileID.String() {
				owned = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if !owned {
			target, err := r.getByID(ctx, tx, profileID)
			if err != nil {
				return err
			}
			if target.UserID != userID {
				return common.ForbiddenErrorf("profile %s does not belong to the caller", profileID)
			}
		}

		now := toMillis(time.Now())
		query, args = b.Update("profiles").
			Set("active", false).
			Set("updated_at", now).
			Where(entsql.And(
				entsql.EQ("user_id", userID),
				entsql.EQ("active", true),
				entsql.NEQ("id", profileID.String()),
			)).
			Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return err
		}

		query, args = b.Update("profiles").
			Set("active", true).
			Set("updated_at", now).
			Where(entsql.EQ("id", profileID.String())).
			Query()
		return tx.Exec(ctx, query, args, nil)
	})
	if err != nil {
		if !isDomainError(err) {
			r.logger.Error("failed to switch active profile", "user_id", userID, "profile_id", profileID, "error", err)
		}
		return err
	}
	r.logger.Info("active profile switched", "user_id", userID, "profile_id", profileID)
	return nil
}

// DeleteProfile removes the profile and every dependent row.
func (r *profileRepository) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	b := r.db.builder()
	err := r.db.withTx(ctx, func(tx dialect.Tx) error {
		for _, table := range []string{
			"listings",
			"profile_role_assignments",
			"profile_verifications",
			"profile_documents",
			"individual_profiles",
			"business_profiles",
		} {
			query, args := b.Delete(table).Where(entsql.EQ("profile_id", id.String())).Query()
			if err := tx.Exec(ctx, query, args, nil); err != nil {
				return err
			}
		}
		query, args := b.Delete("profiles").Where(entsql.EQ("id", id.String())).Query()
		n, err := execAffected(ctx, tx, query, args)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.NotFoundErrorf("profile %s not found", id)
		}
		return nil
	})
	if err != nil && !isDomainError(err) {
		r.logger.Error("failed to delete profile", "profile_id", id, "error", err)
	}
	return err
}

// CountByType returns the number of stored profiles per variant.
func (r *profileRepository) CountByType(ctx context.Context) (map[constants.ProfileType]int, error) {
	b := r.db.builder()
	t := b.Table("profiles")
	query, args := b.Select(t.C("profile_type"), entsql.Count("*")).
		From(t).
		GroupBy(t.C("profile_type")).
		Query()
	out := make(map[constants.ProfileType]int)
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		var pt string
		var n int
		if err := rows.Scan(&pt, &n); err != nil {
			return err
		}
		out[constants.ProfileType(pt)] = n
		return nil
	})
	if err != nil {
		r.logger.Error("failed to count profiles", "error", err)
		return nil, err
	}
	return out, nil
}
