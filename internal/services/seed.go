package services

import (
	"context"
	"fmt"
	"log"

	"shieldsite/internal/models"
)

// DefaultSections is the sample content a fresh install starts with.
var DefaultSections = []SectionInput{
	{
		Page:    models.PageAbout,
		Section: "journey",
		Title:   "Our Journey",
		Order:   1,
		Content: models.SectionContent{
			Text: "Since 2018, Shield Foundation has been dedicated to creating sustainable change in Mumbai's underserved communities. Our journey began with a simple mission: to add life to years and create meaningful opportunities for all.",
			Items: []models.Item{
				{Title: "2018 - Foundation Established", Description: "Shield Foundation founded by Mrs. Swati Ingole with the mission to serve vulnerable communities."},
				{Title: "2019 - First Training Center", Description: "Launched our first youth training center focusing on digital skills and employability."},
				{Title: "2020 - Senior Care Program", Description: "Started comprehensive senior citizen services in Dharavi with medical and social support."},
				{Title: "2021 - 1000 Youth Milestone", Description: "Achieved the milestone of training and placing 1000+ youth in meaningful employment."},
				{Title: "2024 - Expansion Planning", Description: "Initiated expansion plans to serve more communities across Maharashtra."},
			},
		},
	},
	{
		Page:    models.PageAbout,
		Section: "partners",
		Title:   "Our Partners",
		Order:   2,
		Content: models.SectionContent{
			Text: "We collaborate with leading organizations to maximize our impact and reach more communities in need.",
			Items: []models.Item{
				{Title: "Tech Mahindra Foundation", Description: "Strategic partnership for youth skilling and livelihood programs"},
				{Title: "ARCIL", Description: "Collaboration for physiotherapy and rehabilitation services"},
				{Title: "ONGC", Description: "Corporate partnership for community development initiatives"},
				{Title: "UNICEF/MDACS", Description: "Program support for child and youth welfare activities"},
			},
		},
	},
	{
		Page:    models.PagePrograms,
		Section: "youth_skilling",
		Title:   "Youth Skilling & Livelihoods",
		Order:   1,
		Content: models.SectionContent{
			Text:     "Our flagship youth program provides comprehensive training that bridges the gap between education and employment for underserved youth in Mumbai's communities.",
			ImageURL: "https://images.unsplash.com/photo-1522202176988-66273c2fd55f?w=800",
			Items: []models.Item{
				{Title: "Multi-skilling Training", Description: "Training in various trades including digital marketing, computer literacy, and soft skills"},
				{Title: "Industry Alignment", Description: "Curriculum developed in partnership with industry experts to meet current job market demands"},
				{Title: "Job Placement Support", Description: "Comprehensive career guidance and placement assistance with partner organizations"},
				{Title: "Entrepreneurship Development", Description: "Support for youth interested in starting their own businesses and becoming job creators"},
			},
		},
	},
	{
		Page:    models.PagePrograms,
		Section: "senior_care",
		Title:   "Senior Citizen Care",
		Order:   2,
		Content: models.SectionContent{
			Text:     "Comprehensive healthcare and social support services for senior citizens, ensuring they live with dignity and receive the care they deserve.",
			ImageURL: "https://images.unsplash.com/photo-1559757148-5c350d0d3c56?w=800",
			Items: []models.Item{
				{Title: "Regular Health Checkups", Description: "Monthly medical consultations and health monitoring for early intervention"},
				{Title: "Physiotherapy Services", Description: "Professional physiotherapy sessions to improve mobility and reduce pain"},
				{Title: "Social Activities", Description: "Community engagement programs to combat isolation and promote mental wellbeing"},
				{Title: "Emergency Support", Description: "24/7 emergency assistance and coordination with healthcare providers"},
			},
		},
	},
	{
		Page:    models.PageImpact,
		Section: "community_transformation",
		Title:   "Community Transformation",
		Order:   1,
		Content: models.SectionContent{
			Text: "Our programs create ripple effects of positive change that extend far beyond individual beneficiaries, transforming entire communities.",
			Items: []models.Item{
				{Title: "Skills Development", Description: "Comprehensive training programs that equip youth with market-relevant skills"},
				{Title: "Healthcare Access", Description: "Improved healthcare access and quality of life for senior citizens"},
				{Title: "Economic Empowerment", Description: "Creating pathways to sustainable livelihoods and economic independence"},
				{Title: "Community Building", Description: "Strengthening social bonds and community support networks"},
			},
		},
	},
}

// Seed creates the given sections, skipping every page that already has any.
// It returns how many sections were created.
func (s *SectionService) Seed(ctx context.Context, inputs []SectionInput) (int, error) {
	skip := make(map[string]bool)
	for _, in := range inputs {
		if _, seen := skip[in.Page]; seen {
			continue
		}
		existing, err := s.List(ctx, in.Page)
		if err != nil {
			return 0, err
		}
		skip[in.Page] = len(existing) > 0
		if skip[in.Page] {
			log.Printf("page %s already has sections, not seeding it", in.Page)
		}
	}

	created := 0
	for _, in := range inputs {
		if skip[in.Page] {
			continue
		}
		if _, err := s.Create(ctx, in); err != nil {
			return created, fmt.Errorf("seed %s/%s: %w", in.Page, in.Section, err)
		}
		created++
	}
	return created, nil
}
