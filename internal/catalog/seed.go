package catalog

import "time"

func strPtr(s string) *string { return &s }

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// SeedProducts returns the launch catalog in display order.
func SeedProducts() []Product {
	return []Product{
		{
			ID:          "1",
			Name:        "JAY's CineKit (DaVinci Powergrade)",
			Description: "Professional color grading made effortless with comprehensive DaVinci Resolve powergrade templates.",
			Price:       "41.00",
			SalePrice:   strPtr("31.00"),
			Category:    "powergrade",
			ImageURL:    "https://jayjankulovski.com/cdn/shop/files/TheCinekitNEW.jpg?v=1752230972&width=2048",
			IsOnSale:    true,
			IsFeatured:  true,
			Tags:        []string{"davinci", "powergrade", "color-grading"},
		},
		{
			ID:            "2",
			Name:          "JAY v2 LUT PACK",
			Description:   "Cinematic LUTs with warmer, nostalgic tones reminiscent of classic film aesthetics.",
			Price:         "41.00",
			Category:      "luts",
			ImageURL:      "https://jayjankulovski.com/cdn/shop/files/JAY_v2_LUT_PACK.jpg?v=1741153201&width=2048",
			HoverImageURL: strPtr("https://jayjankulovski.com/cdn/shop/files/BA_1.jpg?v=1741640075&width=2048"),
			IsOnSale:      false,
			IsFeatured:    true,
			Tags:          []string{"luts", "cinematic", "warm-tones"},
		},
		{
			ID:            "3",
			Name:          "JAY v1 LUT PACK",
			Description:   "Original LUT collection with cooler tones for professional video editing.",
			Price:         "41.00",
			SalePrice:     strPtr("31.00"),
			Category:      "luts",
			ImageURL:      "https://jayjankulovski.com/cdn/shop/files/JAY_v1_LUT_PACK_2.o.jpg?v=1743772694&width=2048",
			HoverImageURL: strPtr("https://jayjankulovski.com/cdn/shop/files/BA_1_v1.jpg?v=1743772694&width=2048"),
			IsOnSale:      true,
			IsFeatured:    true,
			Tags:          []string{"luts", "cinematic", "cool-tones"},
		},
		{
			ID:            "4",
			Name:          "OVERLAY TRANSITIONS + SFX PACK",
			Description:   "Professional film burn overlays and transition effects for dynamic video editing.",
			Price:         "41.00",
			SalePrice:     strPtr("31.00"),
			Category:      "transitions",
			ImageURL:      "https://jayjankulovski.com/cdn/shop/files/OVERLAYS_SFX.jpg?v=1741147838&width=2048",
			HoverImageURL: strPtr("https://jayjankulovski.com/cdn/shop/files/Burn_GIF_1.gif?v=1741183584&width=500"),
			IsOnSale:      true,
			IsFeatured:    true,
			Tags:          []string{"transitions", "overlays", "sfx", "film-burn"},
		},
	}
}

func SeedReviews() []Review {
	return []Review{
		{
			ID:           "1",
			ProductID:    "2",
			CustomerName: "Anonymous",
			Rating:       5,
			Title:        "best",
			Content:      "best luts",
			Date:         day("2025-07-21"),
		},
		{
			ID:           "2",
			ProductID:    "1",
			CustomerName: "Maverick",
			Rating:       5,
			Title:        "The CineKit has really upped my color grading skills",
			Content:      "The CineKit has really upped my color grading skills. It makes my footages stand out with the film look. Also, Jay really put time and effort in teaching me how to color grade like him. Truly worth every penny!!",
			Date:         day("2025-07-21"),
		},
		{
			ID:           "3",
			ProductID:    "2",
			CustomerName: "Khai Tran",
			Rating:       5,
			Title:        "Legendary Quality, Just Like the V1 Pack",
			Content:      "While V1 pack leans toward cooler tones, V2 pack brings a warmer, more nostalgic feel — reminiscent of classic Fujifilm aesthetics. Like the original, this pack is built with simplicity and professionalism at its core.",
			Date:         day("2025-04-24"),
		},
		{
			ID:           "4",
			ProductID:    "3",
			CustomerName: "Travis R.",
			Rating:       5,
			Title:        "🔥🔥🔥",
			Content:      "Not only did the LUT's give my videos an upgrade. The additional videos helped me with getting my Ace Pro 2 dialed in.",
			Date:         day("2025-03-03"),
		},
		{
			ID:           "5",
			ProductID:    "4",
			CustomerName: "Casey Turner",
			Rating:       5,
			Title:        "10/10 Pack",
			Content:      "This pack is insane. My editing and transition game has gone from 10–99 with this pack alone! Cannot recommend more!",
			Date:         day("2024-10-01"),
		},
		{
			ID:           "6",
			ProductID:    "4",
			CustomerName: "C.T.",
			Rating:       5,
			Title:        "Insane sfx + transition pack",
			Content:      "After purchasing both the Jay v1 LUT pack and the sfx pack i cannot wait for more to come. Super high quality and 10/10 tutorials on how to use them.",
			Date:         day("2024-09-24"),
		},
	}
}

func SeedBeforeAfter() []BeforeAfter {
	return []BeforeAfter{
		{
			ID:             "1",
			ProductID:      "2",
			BeforeImageURL: "https://jayjankulovski.com/cdn/shop/files/before_gt3_1.2.2.jpg?v=1741652634&width=3840",
			AfterImageURL:  "https://jayjankulovski.com/cdn/shop/files/after_gt3_1.2.1.jpg?v=1741652635&width=3840",
			BeforeLabel:    "SLOG3",
			AfterLabel:     "LUT 03. - SERENE",
		},
	}
}
