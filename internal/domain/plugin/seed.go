package plugin

// CatalogEntry describes a built-in marketplace plugin
type CatalogEntry struct {
	Name        string
	Description string
	Price       int64
	Icon        string
	Type        string
}

// Catalog returns the built-in marketplace plugins
func Catalog() []CatalogEntry {
	return []CatalogEntry{
		{
			Name:        "Science Education Teacher",
			Description: "Explain scientific concepts with empathy and curiosity",
			Price:       250,
			Icon:        "science",
			Type:        "education",
		},
		{
			Name:        "Advertiser Plugin",
			Description: "Craft persuasive and emotionally resonant ads",
			Price:       300,
			Icon:        "megaphone",
			Type:        "marketing",
		},
		{
			Name:        "News Reader Plugin",
			Description: "Present news with emotional depth and awareness",
			Price:       275,
			Icon:        "newspaper",
			Type:        "media",
		},
		{
			Name:        "Programming Assistant",
			Description: "Provide coding help with moral support",
			Price:       350,
			Icon:        "code",
			Type:        "productivity",
		},
		{
			Name:        "Yoga Instructor",
			Description: "Personalized yoga guidance with stress-aware tone",
			Price:       225,
			Icon:        "yoga",
			Type:        "wellness",
		},
		{
			Name:        "Fitness Trainer Plugin",
			Description: "Motivational coaching with progress tracking",
			Price:       275,
			Icon:        "fitness",
			Type:        "wellness",
		},
		{
			Name:        "Singing Coach",
			Description: "Learn vocal techniques with confidence-boosting duets",
			Price:       300,
			Icon:        "mic",
			Type:        "creative",
		},
		{
			Name:        "Medical Assistant",
			Description: "Health tracking with empathetic support",
			Price:       400,
			Icon:        "medkit",
			Type:        "wellness",
		},
		{
			Name:        "Creative Writer Plugin",
			Description: "Story and essay writing with emotional intelligence",
			Price:       250,
			Icon:        "pencil",
			Type:        "creative",
		},
		{
			Name:        "Multilingual Communicator",
			Description: "Communicate across languages with cultural empathy",
			Price:       450,
			Icon:        "globe",
			Type:        "communication",
		},
	}
}
