package dish

// Generation parameters
const (
	// MinIngredients is the number of distinct ingredient names required to compose a name
	MinIngredients = 2
	// MaxIngredients caps how many ingredients are drawn for a single name
	MaxIngredients = 4
	// DishTypeProbability is the chance a two-slot template swaps its second ingredient for a dish type
	DishTypeProbability = 0.3
	// AttemptsPerName bounds batch generation at count*AttemptsPerName calls
	AttemptsPerName = 10
)

// Templates is the fixed catalog of dish name patterns.
// {0} and {1} take ingredient names, {2} takes a dish type.
var Templates = []string{
	"{0}と{1}の{2}",
	"{0}{1}{2}",
	"{0}入り{1}{2}",
	"{0}まみれの{1}",
	"特製{0}{1}",
	"{0}と{1}の奇跡",
	"禁断の{0}{1}",
	"{0}{1}爆弾",
	"{0}風{1}",
	"秘密の{0}{1}",
	"{0}と{1}の冒険",
	"謎の{0}{1}",
	"{0}{1}の饗宴",
	"幻の{0}{1}",
	"{0}まみれ{1}スペシャル",
}

// DishTypes is the suffix vocabulary: cooking methods, soups and desserts.
var DishTypes = []string{
	"丼",
	"炒め",
	"煮込み",
	"焼き",
	"蒸し",
	"揚げ",
	"和え",
	"サラダ",
	"スープ",
	"カレー",
	"パスタ",
	"リゾット",
	"グラタン",
	"フリッター",
	"テリーヌ",
	"ムース",
	"コンポート",
	"マリネ",
	"カルパッチョ",
	"タルタル",
	"料理",
	"アラモード",
	"フィナンシェ",
	"キッシュ",
	"ポタージュ",
	"ビスク",
	"チャウダー",
	"ガスパチョ",
	"タプナード",
	"ペースト",
	"ジュレ",
	"エスプーマ",
	"コンフィ",
	"ロースト",
	"ブレゼ",
	"ポシェ",
}

// slotCount reports how many positional placeholders a template uses.
// Placeholders are contiguous from {0}, so the highest one present decides.
func slotCount(template string) int {
	switch {
	case containsPlaceholder(template, 2):
		return 3
	case containsPlaceholder(template, 1):
		return 2
	case containsPlaceholder(template, 0):
		return 1
	default:
		return 0
	}
}
