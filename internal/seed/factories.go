// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"recipebox/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

// Factory builds realistic service inputs. It never touches the database;
// the Seeder feeds its output through the services.
type Factory struct {
	mu      sync.Mutex
	faker   *gofakeit.Faker
	current time.Time
}

// NewFactory creates a Factory whose clock starts maxDays in the past. A zero
// seed picks a random one.
func NewFactory(seed int64, maxDays int) *Factory {
	if maxDays <= 0 {
		maxDays = 90
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{
		faker:   gofakeit.New(seed),
		current: time.Now().UTC().Add(-time.Duration(maxDays) * 24 * time.Hour),
	}
}

// Now is a clock that moves forward by a random few minutes to hours on each
// call, so seeded records get spread-out but ordered timestamps.
func (f *Factory) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(time.Duration(f.faker.Number(1, 240)) * time.Minute)
	return f.current
}

// UserInput returns a CreateUserInput whose username ends with n so that
// inputs from one run never collide.
func (f *Factory) UserInput(n int) service.CreateUserInput {
	f.mu.Lock()
	defer f.mu.Unlock()

	base := sanitizeUsername(f.faker.FirstName() + f.faker.LastName())
	if len(base) > 20 {
		base = base[:20]
	}
	username := strings.ToLower(fmt.Sprintf("%s%d", base, n))
	return service.CreateUserInput{
		Username:     username,
		Email:        fmt.Sprintf("%s@example.com", username),
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", username),
		Bio:          f.faker.Sentence(10),
	}
}

var dishKinds = []string{"breakfast", "lunch", "dinner", "dessert", "snack", "drink"}

// RecipeInput returns a CreateRecipeInput authored by authorID.
func (f *Factory) RecipeInput(authorID string) service.CreateRecipeInput {
	f.mu.Lock()
	defer f.mu.Unlock()

	kind := f.faker.RandomString(dishKinds)
	var title string
	switch kind {
	case "breakfast":
		title = f.faker.Breakfast()
	case "lunch":
		title = f.faker.Lunch()
	case "dinner":
		title = f.faker.Dinner()
	case "dessert":
		title = f.faker.Dessert()
	case "snack":
		title = f.faker.Snack()
	default:
		title = f.faker.Drink()
	}

	ingredients := make([]string, f.faker.Number(2, 8))
	for i := range ingredients {
		produce := f.faker.Vegetable()
		if f.faker.Bool() {
			produce = f.faker.Fruit()
		}
		ingredients[i] = fmt.Sprintf("%d %s %s", f.faker.Number(1, 4), f.faker.RandomString([]string{"cups", "tbsp", "tsp", "pieces", "handfuls"}), strings.ToLower(produce))
	}

	steps := make([]string, f.faker.Number(2, 6))
	for i := range steps {
		steps[i] = strings.TrimSuffix(f.faker.Sentence(f.faker.Number(5, 12)), ".") + "."
	}

	tags := []string{kind}
	if f.faker.Bool() {
		tags = append(tags, f.faker.RandomString([]string{"easy", "quick", "vegan", "vegetarian", "spicy", "comfort", "budget"}))
	}

	return service.CreateRecipeInput{
		AuthorID:    authorID,
		Title:       title,
		Description: f.faker.Paragraph(1, 2, 12, " "),
		Ingredients: ingredients,
		Steps:       steps,
		Tags:        tags,
	}
}

// CommentText returns a short comment body.
func (f *Factory) CommentText() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faker.Sentence(f.faker.Number(3, 15))
}

// Intn returns a pseudo-random int in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.faker.Number(0, n-1)
}

func sanitizeUsername(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "cook"
	}
	return b.String()
}
