package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/config"
	"github.com/tripshield/tripshield/internal/medical"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/metrics"
	"github.com/tripshield/tripshield/internal/quote/domain"
	ratingdomain "github.com/tripshield/tripshield/internal/rating/domain"
	"github.com/tripshield/tripshield/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Node           *snowflake.Node
	Repo           domain.Repository
	MembershipRepo memberdomain.Repository
	Rating         ratingdomain.Source
	Policy         *config.PricingPolicyHolder
	Metrics        *metrics.Metrics `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	node           *snowflake.Node
	repo           domain.Repository
	membershipRepo memberdomain.Repository
	rating         ratingdomain.Source
	policy         *config.PricingPolicyHolder
	metrics        *metrics.Metrics

	referrals repository.Repository[domain.ReferralCode]
	rates     repository.Repository[domain.ExchangeRate]
}

func NewService(p ServiceParam) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("quote.service"),
		node:           p.Node,
		repo:           p.Repo,
		membershipRepo: p.MembershipRepo,
		rating:         p.Rating,
		policy:         p.Policy,
		metrics:        p.Metrics,
		referrals:      repository.ProvideStore[domain.ReferralCode](p.DB),
		rates:          repository.ProvideStore[domain.ExchangeRate](p.DB),
	}
}

func (s *Service) Generate(ctx context.Context, req domain.GenerateRequest) (*domain.GenerateResult, error) {
	if !req.Type.Valid() {
		return nil, s.refuse("invalid_type", memberdomain.ErrInvalidType)
	}
	if !req.CoverageType.Valid() {
		return nil, s.refuse("invalid_coverage", memberdomain.ErrInvalidCoverage)
	}
	if !req.DurationType.Valid() {
		return nil, s.refuse("invalid_duration", memberdomain.ErrInvalidDuration)
	}

	membershipID := s.node.Generate()
	members, riskLevels, err := s.screenMembers(membershipID, req.Members)
	if err != nil {
		return nil, err
	}
	if err := memberdomain.ValidateComposition(req.Type, members); err != nil {
		return nil, s.refuse("invalid_composition", err)
	}

	endDate, err := memberdomain.DeriveEndDate(req.DurationType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, s.refuse("invalid_dates", err)
	}

	policy := s.policy.Get()
	days, err := chargeableDays(policy, req.DurationType, req.StartDate, req.EndDate)
	if err != nil {
		return nil, s.refuse("invalid_dates", err)
	}

	quote := domain.Quote{
		ID:           s.node.Generate(),
		MembershipID: membershipID,
		Currency:     strings.ToUpper(strings.TrimSpace(req.Currency)),
		DayCount:     days,
		ReferralCode: strings.TrimSpace(req.ReferralCode),
	}

	lines := make([]domain.QuoteMemberPrice, 0, len(members))
	for i, member := range members {
		factors, err := s.resolveFactors(ctx, member, req.CoverageType, int(riskLevels[i]), req.StartDate)
		if err != nil {
			return nil, err
		}
		daily := factors.dailyTotal()
		lines = append(lines, domain.QuoteMemberPrice{
			ID:             s.node.Generate(),
			QuoteID:        quote.ID,
			MemberID:       member.ID,
			CountryPrice:   factors.CountryPrice,
			AgeFactor:      factors.AgeFactor,
			CoverageFactor: factors.CoverageFactor,
			MedicalFactor:  factors.MedicalFactor,
			DailyTotal:     daily,
			MemberTotal:    daily * float64(days),
		})
	}

	discountPercent, err := s.resolveDiscount(ctx, quote.ReferralCode)
	if err != nil {
		return nil, err
	}
	priceTotals(&quote, lines, policy.TaxRate, discountPercent)

	rate, err := s.resolveExchangeRate(ctx, quote.Currency)
	if err != nil {
		return nil, err
	}
	quote.ExchangeRate = rate
	quote.TotalGBP = quote.TotalWithTax * rate

	membership := memberdomain.Membership{
		ID:           membershipID,
		UserID:       req.UserID,
		Type:         req.Type,
		CoverageType: req.CoverageType,
		DurationType: req.DurationType,
		Status:       memberdomain.StatusDraft,
		StartDate:    req.StartDate,
		EndDate:      endDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.membershipRepo.NextMembershipNumber(ctx, tx)
		if err != nil {
			return err
		}
		membership.MembershipNumber = number

		if err := s.membershipRepo.Insert(ctx, tx, &membership); err != nil {
			return err
		}
		if err := s.membershipRepo.InsertMembers(ctx, tx, members); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &quote); err != nil {
			return err
		}
		return s.repo.InsertMemberPrices(ctx, tx, lines)
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.QuotesGenerated.Inc()
	}
	s.log.Info("quote generated",
		zap.String("quote_id", quote.ID.String()),
		zap.String("membership_id", membership.ID.String()),
		zap.String("currency", quote.Currency),
		zap.Int("day_count", quote.DayCount),
		zap.Float64("total_with_tax", quote.TotalWithTax),
	)

	return &domain.GenerateResult{
		Membership:   membership,
		Members:      members,
		Quote:        quote,
		MemberPrices: lines,
	}, nil
}

// screenMembers classifies every applicant into a screening state and
// materializes member rows. No quote is generated while any member is
// declined or unclassified.
func (s *Service) screenMembers(membershipID snowflake.ID, inputs []domain.MemberInput) ([]memberdomain.Member, []medical.RiskLevel, error) {
	state := medical.NewState()
	members := make([]memberdomain.Member, 0, len(inputs))

	for _, in := range inputs {
		level, err := medical.Classify(in.Screening)
		if err != nil {
			if errors.Is(err, medical.ErrIncomplete) {
				return nil, nil, s.refuse("screening_incomplete", domain.ErrScreeningIncomplete)
			}
			return nil, nil, err
		}

		member := memberdomain.Member{
			ID:                 s.node.Generate(),
			MembershipID:       membershipID,
			FirstName:          in.FirstName,
			LastName:           in.LastName,
			Email:              in.Email,
			Phone:              in.Phone,
			AddressLine:        in.AddressLine,
			Gender:             in.Gender,
			DateOfBirth:        in.DateOfBirth,
			Nationality:        in.Nationality,
			CountryOfResidence: in.CountryOfResidence,
			HasConditions:      level == medical.RiskLoaded,
			IsPrimary:          in.IsPrimary,
		}
		if err := state.Finalize(member.ID, level); err != nil {
			return nil, nil, err
		}
		members = append(members, member)
	}

	if state.HasDeclined() {
		return nil, nil, s.refuse("member_declined", domain.ErrMemberDeclined)
	}

	ids := make([]snowflake.ID, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.ID)
	}
	if !state.Complete(ids) {
		return nil, nil, s.refuse("screening_incomplete", domain.ErrScreeningIncomplete)
	}

	levels := make([]medical.RiskLevel, 0, len(members))
	for _, member := range members {
		level, _ := state.Level(member.ID)
		levels = append(levels, level)
	}
	return members, levels, nil
}

func (s *Service) resolveDiscount(ctx context.Context, code string) (float64, error) {
	if code == "" {
		return 0, nil
	}
	referral, err := s.referrals.FindOne(ctx, &domain.ReferralCode{Code: code})
	if err != nil {
		return 0, err
	}
	if referral == nil || !referral.Active {
		s.log.Info("referral code ignored", zap.String("code", code))
		return 0, nil
	}
	return referral.DiscountPercent, nil
}

func (s *Service) resolveExchangeRate(ctx context.Context, currency string) (float64, error) {
	rate, err := s.rates.FindOne(ctx, &domain.ExchangeRate{Currency: currency})
	if err != nil {
		return 0, err
	}
	if rate == nil {
		return 0, s.refuse("unknown_currency", domain.ErrUnknownCurrency)
	}
	return rate.RateToGBP, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	return quote, nil
}

func (s *Service) MemberPrices(ctx context.Context, quoteID snowflake.ID) ([]domain.QuoteMemberPrice, error) {
	return s.repo.ListMemberPrices(ctx, s.db, quoteID)
}

func (s *Service) LatestByMembership(ctx context.Context, membershipID snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.LatestByMembership(ctx, s.db, membershipID)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	return quote, nil
}

func (s *Service) refuse(reason string, err error) error {
	if s.metrics != nil {
		s.metrics.QuotesRefused.WithLabelValues(reason).Inc()
	}
	return err
}
