package classify

import "github.com/samvad-hq/samvad-health-news/internal/domain"

// englishTerms is the health, medical and lifestyle vocabulary used by Filter.
var englishTerms = []string{
	"health", "medical", "hospital", "doctor", "medicine", "disease", "virus", "covid",
	"vaccine", "vaccination", "treatment", "surgery", "patient", "clinic", "pharmacy",
	"wellness", "fitness", "nutrition", "diet", "exercise", "mental health", "diabetes",
	"cancer", "heart", "cardiac", "blood pressure", "cholesterol", "obesity", "epidemic",
	"pandemic", "symptom", "diagnosis", "therapy", "healthcare", "medication", "pharmaceutical",
	"medical research", "clinical trial", "prevention", "immune", "immunity", "allergy",
	"infection", "rehabilitation", "emergency", "ambulance", "first aid", "health tips",
	"lifestyle", "healthy living", "sleep", "stress", "anxiety", "depression", "mindfulness",
	"yoga", "meditation", "supplements", "vitamins", "pregnancy", "childcare", "elderly care",
	"skin care", "dental", "vision", "hearing", "bone health", "joint", "arthritis",
	"respiratory", "lung", "breathing", "asthma", "allergies", "food safety", "hygiene",
}

// sinhalaTerms carries the same vocabulary for Sinhala-language sources.
// Several terms contain a zero-width joiner; it is part of the spelling.
var sinhalaTerms = []string{
	"සෞඛ්\u200dය", "වෛද්\u200dය", "රෝහල", "ඖෂධ", "රෝග", "ප්\u200dරතිකාර",
	"ශල්\u200dයකර්ම", "රෝගී", "ක්ලිනික්", "ෆාමසි", "සෞඛ්\u200dය සේවා",
	"මානසික සෞඛ්\u200dය", "දියවැඩියාව", "පිළිකා", "හෘද", "රුධිර පීඩනය",
	"කොලෙස්ටරෝල්", "තරබාරුකම", "වසංගත", "ලක්ෂණ", "රෝග විනිශ්චය", "චිකිත්සාව",
	"පළමු ප්\u200dරතිකාර", "ආරක්ෂණ", "ප්\u200dරතිශක්තිකරණ", "ආසාදන",
	"සෞඛ්\u200dය උපදෙස්", "ජීවන රටාව", "නින්ද", "මානසික සීදුර", "ව්\u200dයායාම",
	"පෝෂණ", "ආහාර", "විටමින්", "සුව", "යෝග", "භාවනා", "ගර්භණී", "ළමා සෞඛ්\u200dය",
	"වැඩිහිටි සෞඛ්\u200dය", "දන්ත", "ඇස්", "ඇසීම", "හුස්ම", "ශ්වසන",
	"ආහාර ආරක්ෂාව",
}

// lifestyleTerms widen Filter to general living and self-care stories.
var lifestyleTerms = []string{
	"lifestyle", "living", "wellness", "wellbeing", "mindfulness", "balance",
	"self-care", "habits", "routine", "healthy living", "life tips",
}

type bucket struct {
	category domain.Category
	terms    []string
}

// categoryBuckets are checked in order; the first bucket with a hit wins.
var categoryBuckets = []bucket{
	{domain.CategoryFitness, []string{"fitness", "exercise", "workout", "gym", "training", "sport", "physical activity"}},
	{domain.CategoryNutrition, []string{"nutrition", "diet", "food", "eating", "meal", "vitamin", "supplement", "recipe"}},
	{domain.CategoryWellness, []string{"wellness", "mental", "stress", "anxiety", "mindfulness", "meditation", "sleep", "relaxation"}},
	{domain.CategoryLifestyle, []string{"lifestyle", "living", "habit", "routine", "balance", "self-care", "tips", "advice"}},
	{domain.CategoryMedical, []string{"medical", "clinical", "surgery", "hospital", "doctor", "physician", "treatment", "diagnosis"}},
}

var urgentTerms = []string{
	"outbreak", "epidemic", "pandemic", "emergency", "alert", "warning", "crisis", "urgent",
	"breaking", "death", "fatal", "dangerous", "threat", "serious", "critical",
}

var developmentTerms = []string{
	"vaccine", "treatment", "breakthrough", "study", "research", "new", "discovery",
	"clinical trial", "approved", "recommendation", "guidelines", "prevention", "awareness",
}
