package services

import (
	"errors"
	"sort"
	"strconv"

	"gorm.io/gorm"

	"github.com/torvik/lumengallery/models"
)

// fakeFaceRepo is an in-memory FaceRepositoryInterface for service tests.
type fakeFaceRepo struct {
	faces  map[uint]*models.Face
	nextID uint

	listErr   error
	assignErr error
}

func newFakeFaceRepo() *fakeFaceRepo {
	return &fakeFaceRepo{faces: make(map[uint]*models.Face), nextID: 1}
}

func (r *fakeFaceRepo) addFace(embedding []float32, confidence float64, personID *uint) uint {
	face := &models.Face{ID: r.nextID, Confidence: confidence, PersonID: personID}
	face.SetEmbedding(embedding)
	r.faces[face.ID] = face
	r.nextID++
	return face.ID
}

func (r *fakeFaceRepo) Create(face *models.Face) error {
	face.ID = r.nextID
	r.nextID++
	r.faces[face.ID] = face
	return nil
}

func (r *fakeFaceRepo) GetByID(id uint) (*models.Face, error) {
	face, ok := r.faces[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *face
	return &copied, nil
}

func (r *fakeFaceRepo) ListUnassigned(limit, offset int, randomize bool) ([]models.Face, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Face
	for _, face := range r.faces {
		if face.PersonID == nil && !face.Ignored && face.HasEmbedding {
			out = append(out, *face)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ID < out[j].ID
	})
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFaceRepo) ListByPersonID(personID uint, limit int) ([]models.Face, error) {
	var out []models.Face
	for _, face := range r.faces {
		if face.PersonID != nil && *face.PersonID == personID && !face.Ignored && face.HasEmbedding {
			out = append(out, *face)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeFaceRepo) CountUnassigned() (int64, error) {
	faces, err := r.ListUnassigned(0, 0, false)
	if err != nil {
		return 0, err
	}
	return int64(len(faces)), nil
}

func (r *fakeFaceRepo) AssignPerson(faceID uint, personID uint) error {
	if r.assignErr != nil {
		return r.assignErr
	}
	face, ok := r.faces[faceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	id := personID
	face.PersonID = &id
	return nil
}

func (r *fakeFaceRepo) BulkAssignPerson(faceIDs []uint, personID uint) (int64, error) {
	var affected int64
	for _, faceID := range faceIDs {
		if err := r.AssignPerson(faceID, personID); err == nil {
			affected++
		}
	}
	return affected, nil
}

func (r *fakeFaceRepo) UnassignPerson(faceID uint) error {
	face, ok := r.faces[faceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	face.PersonID = nil
	return nil
}

func (r *fakeFaceRepo) BulkDisable(faceIDs []uint) (int64, error) {
	var affected int64
	for _, faceID := range faceIDs {
		if face, ok := r.faces[faceID]; ok {
			face.Ignored = true
			face.PersonID = nil
			affected++
		}
	}
	return affected, nil
}

func (r *fakeFaceRepo) SetIgnored(faceID uint, ignored bool) error {
	face, ok := r.faces[faceID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	face.Ignored = ignored
	return nil
}

// fakePersonRepo is an in-memory PersonRepositoryInterface for service tests.
type fakePersonRepo struct {
	people map[uint]*models.Person
	nextID uint

	centroidUpdates []uint
	updateErrFor    map[uint]error
	listErr         error
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{people: make(map[uint]*models.Person), nextID: 1}
}

func (r *fakePersonRepo) addPerson(name string, centroid []float32) uint {
	person := &models.Person{ID: r.nextID, Name: name}
	person.SetCentroid(centroid)
	r.people[person.ID] = person
	r.nextID++
	return person.ID
}

func (r *fakePersonRepo) Create(person *models.Person) error {
	person.ID = r.nextID
	r.nextID++
	copied := *person
	r.people[person.ID] = &copied
	return nil
}

func (r *fakePersonRepo) GetByID(id uint) (*models.Person, error) {
	person, ok := r.people[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *person
	return &copied, nil
}

func (r *fakePersonRepo) ListAll() ([]models.Person, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Person
	for _, person := range r.people {
		out = append(out, *person)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePersonRepo) ListWithCentroids() ([]models.Person, error) {
	all, err := r.ListAll()
	if err != nil {
		return nil, err
	}
	var out []models.Person
	for i := range all {
		if len(all[i].CentroidData) > 0 {
			out = append(out, all[i])
		}
	}
	return out, nil
}

func (r *fakePersonRepo) Update(person *models.Person) error {
	if _, ok := r.people[person.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *person
	r.people[person.ID] = &copied
	return nil
}

func (r *fakePersonRepo) UpdateCentroid(personID uint, centroid []float32) error {
	if err, ok := r.updateErrFor[personID]; ok {
		return err
	}
	person, ok := r.people[personID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	person.SetCentroid(centroid)
	r.centroidUpdates = append(r.centroidUpdates, personID)
	return nil
}

func (r *fakePersonRepo) Delete(id uint) error {
	if _, ok := r.people[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.people, id)
	return nil
}

// fakeSettingRepo is a map-backed SettingRepositoryInterface.
type fakeSettingRepo struct {
	values map[string]string
}

func newFakeSettingRepo() *fakeSettingRepo {
	return &fakeSettingRepo{values: make(map[string]string)}
}

func (r *fakeSettingRepo) Get(key string) (string, error) {
	value, ok := r.values[key]
	if !ok {
		return "", errors.New("setting not found")
	}
	return value, nil
}

func (r *fakeSettingRepo) Set(key, value string) error {
	r.values[key] = value
	return nil
}

func (r *fakeSettingRepo) GetFloat(key string, fallback float64) float64 {
	raw, ok := r.values[key]
	if !ok {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}
