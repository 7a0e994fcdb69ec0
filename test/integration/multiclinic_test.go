package integration

import (
	"context"
	"testing"

	"github.com/clinichq/clinic/internal/domain/appointment"
	"github.com/clinichq/clinic/internal/domain/booking"
	"github.com/clinichq/clinic/internal/domain/directory"
	"github.com/clinichq/clinic/internal/domain/schedule"
)

// Each clinic books the same date and time in its own schema. The slot
// uniqueness guard is per clinic, so both bookings succeed and neither
// clinic sees the other's rows.
func TestClinicIsolation(t *testing.T) {
	ctx := context.Background()
	clinicA := uniqueClinicID("iso_a")
	clinicB := uniqueClinicID("iso_b")
	createClinicSchema(t, ctx, clinicA)
	createClinicSchema(t, ctx, clinicB)
	defer dropClinicSchema(t, ctx, clinicA)
	defer dropClinicSchema(t, ctx, clinicB)

	svc := booking.NewService(
		directory.NewDoctorRepo(globalDB.Pool),
		schedule.NewRepo(globalDB.Pool),
		appointment.NewRepo(globalDB.Pool),
		30,
	)

	type clinicFixture struct {
		clinicID string
		doctor   *directory.Doctor
		patient  *directory.Patient
	}
	fixtures := make([]clinicFixture, 0, 2)
	for _, cid := range []string{clinicA, clinicB} {
		doc := createTestDoctor(t, ctx, globalDB.Pool, cid, "Dr. Shared Name")
		pat := createTestPatient(t, ctx, globalDB.Pool, cid, "Shared Patient")
		seedWorkingWeek(t, ctx, globalDB.Pool, cid, doc.ID)
		fixtures = append(fixtures, clinicFixture{clinicID: cid, doctor: doc, patient: pat})
	}

	for _, f := range fixtures {
		err := withClinicConn(ctx, globalDB.Pool, f.clinicID, func(ctx context.Context) error {
			dec, err := svc.AttemptBook(ctx, bookReq(f.doctor.ID, f.patient.ID, 10*60))
			if err != nil {
				return err
			}
			if dec.Outcome != booking.OutcomeAccepted {
				t.Errorf("clinic %s: outcome = %s (%s), want accepted", f.clinicID, dec.Outcome, dec.Reason)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("book in clinic %s: %v", f.clinicID, err)
		}
	}

	// Clinic A sees exactly its own appointment, none of clinic B's.
	err := withClinicConn(ctx, globalDB.Pool, clinicA, func(ctx context.Context) error {
		repo := appointment.NewRepo(globalDB.Pool)
		appts, err := repo.ListForDay(ctx, fixtures[0].doctor.ID, tuesday, nil)
		if err != nil {
			return err
		}
		if len(appts) != 1 {
			t.Errorf("clinic %s: expected 1 appointment, got %d", clinicA, len(appts))
		}

		// Clinic B's doctor does not exist in clinic A's schema at all.
		other, err := repo.ListForDay(ctx, fixtures[1].doctor.ID, tuesday, nil)
		if err != nil {
			return err
		}
		if len(other) != 0 {
			t.Errorf("clinic %s leaked %d appointments into %s", clinicB, len(other), clinicA)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("isolation check: %v", err)
	}
}
