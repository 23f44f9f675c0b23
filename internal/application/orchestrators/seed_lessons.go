package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"parlevrai/internal/domain/lesson"
)

// LessonStoreForSeed defines the store interface needed by SeedLessons.
type LessonStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, l lesson.Lesson) error
}

// DemoLessons returns the two lessons a fresh installation starts with.
func DemoLessons(now time.Time) []lesson.Lesson {
	return []lesson.Lesson{
		{
			ID:      "demo-se-presenter",
			Level:   lesson.LevelBeginner,
			Theme:   "Se présenter",
			Date:    "2026-01-30",
			Reading: "Bonjour ! Je m'appelle Marie. J'ai 25 ans et j'habite à Paris. Je suis étudiante en médecine. J'aime beaucoup lire et faire du sport. Le weekend, j'aime me promener dans les parcs de la ville.",
			Grammar: lesson.Grammar{
				Title:       "Les verbes « être » et « avoir » au présent",
				Explanation: "Ces deux verbes sont essentiels en français.\n\n**ÊTRE** : je suis, tu es, il/elle est, nous sommes, vous êtes, ils/elles sont\n\n**AVOIR** : j'ai, tu as, il/elle a, nous avons, vous avez, ils/elles ont",
				Examples: []string{
					"Je suis étudiant → I am a student",
					"J'ai 25 ans → I am 25 years old",
				},
			},
			Vocabulary: []lesson.VocabularyItem{
				{Word: "se présenter", Translation: "to introduce oneself"},
				{Word: "habiter", Translation: "to live"},
				{Word: "étudiant(e)", Translation: "student"},
				{Word: "aimer", Translation: "to like/love"},
				{Word: "se promener", Translation: "to take a walk"},
			},
			Exercise: lesson.Exercise{
				Instruction: "Présentez-vous à voix haute en suivant ce modèle",
				Template:    "Bonjour ! Je m'appelle [votre nom]. J'ai [votre âge] ans. J'habite à [votre ville]. Je suis [votre profession]. J'aime [vos passions].",
				Tips: []string{
					"Parlez lentement et clairement",
					"Répétez plusieurs fois",
					"Enregistrez-vous si possible",
				},
			},
			AIPrompt:  "Tu es un professeur de français bienveillant. Je viens de faire ma première leçon sur les présentations. Pose-moi 3 questions simples en français pour pratiquer (ex: Comment tu t'appelles ? Où habites-tu ?). Après mes réponses, corrige-moi gentiment et encourage-moi. Parle simplement.",
			CreatedAt: now,
		},
		{
			ID:      "demo-les-courses",
			Level:   lesson.LevelBeginner,
			Theme:   "Les courses",
			Date:    "2026-01-31",
			Reading: "Je vais au marché tous les samedis. J'achète des fruits frais, des légumes et du pain. Le vendeur est très sympa. Il me dit toujours « Bonjour madame ! » avec un grand sourire. J'aime l'ambiance du marché.",
			Grammar: lesson.Grammar{
				Title:       "Les articles définis et indéfinis",
				Explanation: "Les articles s'accordent avec le nom en genre et en nombre.\n\n- **Définis** (le, la, les) : objets spécifiques\n- **Indéfinis** (un, une, des) : objets non spécifiques\n- **Partitifs** (du, de la) : quantités non précises",
				Examples: []string{
					"Je vais au marché (le marché)",
					"J'achète des fruits (fruits en général)",
					"Je veux du pain (une quantité de pain)",
				},
			},
			Vocabulary: []lesson.VocabularyItem{
				{Word: "le marché", Translation: "the market"},
				{Word: "acheter", Translation: "to buy"},
				{Word: "frais/fraîche", Translation: "fresh"},
				{Word: "le vendeur", Translation: "the seller"},
				{Word: "sympa", Translation: "nice (informal)"},
			},
			Exercise: lesson.Exercise{
				Instruction: "Simulez un dialogue au marché",
				Template:    "Vendeur: Bonjour ! Que désirez-vous ?\nVous: Bonjour ! Je voudrais [produit], s'il vous plaît.\nVendeur: Voilà ! Ce sera [prix] euros.\nVous: Merci beaucoup !",
				Tips: []string{
					"Utilisez « s'il vous plaît » et « merci »",
					"Pratiquez les deux rôles",
					"Variez les produits",
				},
			},
			AIPrompt:  "Tu es un vendeur sympathique au marché français. Je veux pratiquer mes achats. Démarre la conversation en me saluant et en me demandant ce que je veux. Ensuite, réagis naturellement à mes demandes, propose des produits, annonce des prix simples. Reste dans le contexte du marché français traditionnel.",
			CreatedAt: now,
		},
	}
}

// ExecuteSeedLessons stores the demonstration lessons when there are none.
// PRE: Database is initialized
// POST: At least the demo lessons exist
func ExecuteSeedLessons(ctx context.Context, store LessonStoreForSeed) error {
	n, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	for _, l := range DemoLessons(time.Now()) {
		if err := store.Save(ctx, l); err != nil {
			return err
		}
	}
	slog.Info("lessons_seeded", "count", 2)
	return nil
}
