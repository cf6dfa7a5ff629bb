// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/nutridash/dashboard/internal/domain/feedback"
	"github.com/nutridash/dashboard/internal/domain/food"
	"github.com/nutridash/dashboard/internal/domain/user"
	"github.com/stretchr/testify/require"
)

// DefaultPassword is the password every built user gets unless overridden
const DefaultPassword = "correct-horse-battery"

// FoodFactory generates random catalog rows
type FoodFactory struct {
	faker *gofakeit.Faker
	seq   int
}

// NewFoodFactory creates a new food factory with seeded faker
func NewFoodFactory(seed int64) *FoodFactory {
	return &FoodFactory{
		faker: gofakeit.New(seed),
	}
}

// Record returns a valid record with every nutrient present
func (f *FoodFactory) Record() food.Record {
	f.seq++
	return food.Record{
		ID:       fmt.Sprintf("gen-%d", f.seq),
		Name:     fmt.Sprintf("%s %s", f.faker.Adjective(), f.faker.Noun()),
		Category: f.faker.RandomString([]string{"Fruit", "Vegetables", "Grains", "Legumes", "Snacks"}),
		Calories: food.Some(f.faker.Float64Range(10, 600)),
		Protein:  food.Some(f.faker.Float64Range(0, 40)),
		Carbs:    food.Some(f.faker.Float64Range(0, 80)),
		Fat:      food.Some(f.faker.Float64Range(0, 50)),
		Fiber:    food.Some(f.faker.Float64Range(0, 15)),
		Sugar:    food.Some(f.faker.Float64Range(0, 30)),
	}
}

// Records returns n random records with unique IDs
func (f *FoodFactory) Records(n int) []food.Record {
	out := make([]food.Record, n)
	for i := range out {
		out[i] = f.Record()
	}
	return out
}

// FoodBuilder provides a fluent interface for building catalog rows
type FoodBuilder struct {
	record food.Record
}

// NewFoodBuilder starts a record with no category and no nutrients
func NewFoodBuilder(id, name string) *FoodBuilder {
	return &FoodBuilder{record: food.Record{ID: id, Name: name}}
}

// WithCategory sets the category
func (b *FoodBuilder) WithCategory(category string) *FoodBuilder {
	b.record.Category = category
	return b
}

// WithCalories sets calories per 100 g
func (b *FoodBuilder) WithCalories(v float64) *FoodBuilder {
	b.record.Calories = food.Some(v)
	return b
}

// WithProtein sets protein per 100 g
func (b *FoodBuilder) WithProtein(v float64) *FoodBuilder {
	b.record.Protein = food.Some(v)
	return b
}

// WithSugar sets sugar per 100 g
func (b *FoodBuilder) WithSugar(v float64) *FoodBuilder {
	b.record.Sugar = food.Some(v)
	return b
}

// WithMacros sets carbs, fat, fiber and sugar per 100 g
func (b *FoodBuilder) WithMacros(carbs, fat, fiber, sugar float64) *FoodBuilder {
	b.record.Carbs = food.Some(carbs)
	b.record.Fat = food.Some(fat)
	b.record.Fiber = food.Some(fiber)
	b.record.Sugar = food.Some(sugar)
	return b
}

// Build returns the record
func (b *FoodBuilder) Build() food.Record {
	return b.record
}

// SampleRecords is a small fixed catalog covering every diet and a few
// missing values. Row order matters to tests.
func SampleRecords() []food.Record {
	return []food.Record{
		NewFoodBuilder("1", "Oatmeal").WithCategory("Grains").WithCalories(68).WithProtein(2.4).WithMacros(12, 1.4, 1.7, 0.5).Build(),
		NewFoodBuilder("2", "Chicken Breast").WithCategory("Meat").WithCalories(165).WithProtein(31).WithMacros(0, 3.6, 0, 0).Build(),
		NewFoodBuilder("3", "Salmon Fillet").WithCategory("Seafood").WithCalories(208).WithProtein(20).WithMacros(0, 13, 0, 0).Build(),
		NewFoodBuilder("4", "Greek Yogurt").WithCategory("Dairy").WithCalories(59).WithProtein(10).WithMacros(3.6, 0.4, 0, 3.2).Build(),
		NewFoodBuilder("5", "Lentils").WithCategory("Legumes").WithCalories(116).WithProtein(9).WithMacros(20, 0.4, 8, 1.8).Build(),
		NewFoodBuilder("6", "Tofu").WithCategory("Legumes").WithCalories(76).WithProtein(8).WithMacros(1.9, 4.8, 0.3, 0.6).Build(),
		NewFoodBuilder("7", "Banana").WithCategory("Fruit").WithCalories(89).WithProtein(1.1).WithMacros(23, 0.3, 2.6, 12).Build(),
		NewFoodBuilder("8", "Broccoli").WithCategory("Vegetables").WithCalories(34).WithProtein(2.8).WithMacros(7, 0.4, 2.6, 1.7).Build(),
		NewFoodBuilder("9", "Cheddar Cheese").WithCategory("Dairy").WithCalories(403).WithProtein(25).WithMacros(1.3, 33, 0, 0.5).Build(),
		NewFoodBuilder("10", "Boiled Egg").WithCalories(155).WithProtein(13).Build(),
		NewFoodBuilder("11", "Almonds").WithCategory("Nuts").WithCalories(579).WithProtein(21).WithMacros(22, 50, 12.5, 4.4).Build(),
		NewFoodBuilder("12", "Mystery Bar").WithCategory("Snacks").WithProtein(5).Build(),
	}
}

// SampleCatalog builds SampleRecords into a catalog
func SampleCatalog(t testing.TB) *food.Catalog {
	t.Helper()
	c, err := food.NewCatalog(SampleRecords())
	require.NoError(t, err)
	return c
}

// SampleCSV renders SampleRecords with the v1 dataset header
func SampleCSV() string {
	var sb strings.Builder
	sb.WriteString("fdc_id,Food,Category,Calories (kcal),Protein (g),Carbs (g),Fat (g),Fiber (g),Sugar (g)\n")
	for _, r := range SampleRecords() {
		fmt.Fprintf(&sb, "%s,%s,%s,%s,%s,%s,%s,%s,%s\n",
			r.ID, r.Name, r.Category,
			csvAmount(r.Calories), csvAmount(r.Protein), csvAmount(r.Carbs),
			csvAmount(r.Fat), csvAmount(r.Fiber), csvAmount(r.Sugar))
	}
	return sb.String()
}

func csvAmount(a food.Amount) string {
	if !a.Present() {
		return ""
	}
	return a.String()
}

// UserBuilder provides a fluent interface for building test users
type UserBuilder struct {
	username string
	email    string
	password string
	body     user.BodyMetrics
}

// NewUserBuilder creates a builder with random credentials and a valid body
func NewUserBuilder() *UserBuilder {
	faker := gofakeit.New(time.Now().UnixNano())

	return &UserBuilder{
		username: strings.ReplaceAll(faker.Username(), "@", ""),
		email:    faker.Email(),
		password: DefaultPassword,
		body: user.BodyMetrics{
			WeightKg: 70,
			HeightCm: 175,
			Age:      30,
			Gender:   user.GenderMale,
			Activity: user.ActivityModeratelyActive,
		},
	}
}

// WithUsername sets the username
func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.username = username
	return b
}

// WithEmail sets the email
func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

// WithPassword sets the password
func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithBody sets the body metrics
func (b *UserBuilder) WithBody(body user.BodyMetrics) *UserBuilder {
	b.body = body
	return b
}

// Build creates the user
func (b *UserBuilder) Build() (*user.User, error) {
	return user.NewUser(b.username, b.email, b.password, b.body)
}

// MustBuild creates the user and fails the test on error
func (b *UserBuilder) MustBuild(t testing.TB) *user.User {
	t.Helper()
	u, err := b.Build()
	require.NoError(t, err)
	return u
}

// NewTestFeedback creates a valid random submission
func NewTestFeedback(t testing.TB) *feedback.Feedback {
	t.Helper()
	faker := gofakeit.New(time.Now().UnixNano())
	fb, err := feedback.NewFeedback(faker.Name(), faker.Email(), faker.Sentence(3), faker.Paragraph(1, 2, 8, " "))
	require.NoError(t, err)
	return fb
}
