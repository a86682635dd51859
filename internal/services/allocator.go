package services

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"railway/internal/domain/models"
	"railway/internal/utils"
)

const (
	// TaxRate is applied to the class-adjusted base fare.
	TaxRate = 0.15

	pnrSpace = 10_000_000_000
)

// ClassMultiplier scales a train's base fare. Unknown classes pay the GENERAL rate.
func ClassMultiplier(class models.TicketClass) float64 {
	switch class {
	case models.ClassSleeper:
		return 1.5
	case models.ClassAC3Tier:
		return 2.5
	case models.ClassAC2Tier:
		return 3.5
	case models.ClassAC1Tier:
		return 5.0
	default:
		return 1.0
	}
}

func ComputeFare(baseFare float64, class models.TicketClass) models.Fare {
	base := utils.RoundMoney(baseFare * ClassMultiplier(class))
	tax := utils.RoundMoney(base * TaxRate)
	return models.Fare{Base: base, Tax: tax, Total: utils.RoundMoney(base + tax)}
}

type coachPool struct {
	prefix string
	size   int
}

var coachPools = map[models.TicketClass]coachPool{
	models.ClassGeneral: {"GS", 3},
	models.ClassSleeper: {"S", 3},
	models.ClassAC3Tier: {"B", 2},
	models.ClassAC2Tier: {"A", 2},
	models.ClassAC1Tier: {"H", 1},
}

// CoachPicker chooses an index in [0, size) from a class's coach pool.
type CoachPicker interface {
	Pick(class models.TicketClass, size int) int
}

// CoachPickerFunc adapts a plain function to CoachPicker.
type CoachPickerFunc func(class models.TicketClass, size int) int

func (f CoachPickerFunc) Pick(class models.TicketClass, size int) int { return f(class, size) }

// RoundRobinPicker cycles through each class's pool independently.
type RoundRobinPicker struct {
	mu   sync.Mutex
	next map[models.TicketClass]int
}

func (p *RoundRobinPicker) Pick(class models.TicketClass, size int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.next == nil {
		p.next = map[models.TicketClass]int{}
	}
	i := p.next[class] % size
	p.next[class] = i + 1
	return i
}

// Allocator assigns seats, coaches, berths and PNRs. Everything random is injectable.
type Allocator struct {
	Seats  SeatLister
	Picker CoachPicker
	// PNRSource returns a value in [0, 1e10); it is zero-padded to 10 digits.
	PNRSource func() int64
}

func NewAllocator(seats SeatLister) *Allocator {
	return &Allocator{
		Seats:     seats,
		Picker:    &RoundRobinPicker{},
		PNRSource: func() int64 { return rand.Int63n(pnrSpace) },
	}
}

// AssignCoach returns a coach code such as "S2". Unknown classes use the GENERAL pool.
func (a *Allocator) AssignCoach(class models.TicketClass) string {
	pool, ok := coachPools[class]
	if !ok {
		pool = coachPools[models.ClassGeneral]
	}
	i := 0
	if a.Picker != nil {
		i = a.Picker.Pick(class, pool.size)
	}
	if i < 0 || i >= pool.size {
		i = 0
	}
	return fmt.Sprintf("%s%d", pool.prefix, i+1)
}

// AssignBerth maps a seat number onto the eight-berth bay layout.
func AssignBerth(seatNumber int) models.BerthType {
	switch seatNumber % 8 {
	case 1, 4:
		return models.BerthLower
	case 2, 5:
		return models.BerthMiddle
	case 3, 6:
		return models.BerthUpper
	case 7:
		return models.BerthSideLower
	default:
		return models.BerthSideUpper
	}
}

// NextSeatNumber fills gaps left by cancellations before extending the sequence.
func (a *Allocator) NextSeatNumber(ctx context.Context, trainID int64) (int, error) {
	used, err := a.Seats.BookedSeatNumbers(ctx, trainID)
	if err != nil {
		return 0, err
	}
	return MinExcluded(used), nil
}

// MinExcluded is the smallest positive integer missing from nums.
func MinExcluded(nums []int) int {
	seen := make(map[int]struct{}, len(nums))
	for _, n := range nums {
		if n > 0 {
			seen[n] = struct{}{}
		}
	}
	for i := 1; ; i++ {
		if _, ok := seen[i]; !ok {
			return i
		}
	}
}

func (a *Allocator) GeneratePNR() string {
	src := a.PNRSource
	if src == nil {
		src = func() int64 { return rand.Int63n(pnrSpace) }
	}
	n := src() % pnrSpace
	if n < 0 {
		n = -n
	}
	return fmt.Sprintf("%010d", n)
}
