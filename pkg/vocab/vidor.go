package vocab

// VidOR object categories. Category ID = index + 1.
var vidorClasses = []string{
	"adult",
	"aircraft",
	"antelope",
	"baby",
	"baby_seat",
	"baby_walker",
	"backpack",
	"ball/sports_ball",
	"bat",
	"bear",
	"bench",
	"bicycle",
	"bird",
	"bottle",
	"bread",
	"bus/truck",
	"cake",
	"camel",
	"camera",
	"car",
	"cat",
	"cattle/cow",
	"cellphone",
	"chair",
	"chicken",
	"child",
	"crab",
	"crocodile",
	"cup",
	"dish",
	"dog",
	"duck",
	"electric_fan",
	"elephant",
	"faucet",
	"fish",
	"frisbee",
	"fruits",
	"guitar",
	"hamster/rat",
	"handbag",
	"horse",
	"kangaroo",
	"laptop",
	"leopard",
	"lion",
	"microwave",
	"motorcycle",
	"oven",
	"panda",
	"penguin",
	"piano",
	"pig",
	"rabbit",
	"racket",
	"refrigerator",
	"scooter",
	"screen/monitor",
	"sheep/goat",
	"sink",
	"skateboard",
	"ski",
	"snake",
	"snowboard",
	"sofa",
	"squirrel",
	"stingray",
	"stool",
	"stop_sign",
	"suitcase",
	"surfboard",
	"table",
	"tiger",
	"toilet",
	"toy",
	"traffic_light",
	"train",
	"turtle",
	"vegetables",
	"watercraft",
}

// COCO has a single "person" class, where VidOR splits people by age.
// We map person to adult, which is by far the most common of the three.
var vidorFromCOCO = map[string]string{
	"person":        "adult",
	"airplane":      "aircraft",
	"backpack":      "backpack",
	"sports ball":   "ball/sports_ball",
	"baseball bat":  "bat",
	"bear":          "bear",
	"bench":         "bench",
	"bicycle":       "bicycle",
	"bird":          "bird",
	"bottle":        "bottle",
	"bus":           "bus/truck",
	"truck":         "bus/truck",
	"cake":          "cake",
	"car":           "car",
	"cat":           "cat",
	"cow":           "cattle/cow",
	"cell phone":    "cellphone",
	"chair":         "chair",
	"cup":           "cup",
	"dog":           "dog",
	"elephant":      "elephant",
	"frisbee":       "frisbee",
	"handbag":       "handbag",
	"horse":         "horse",
	"laptop":        "laptop",
	"microwave":     "microwave",
	"motorcycle":    "motorcycle",
	"oven":          "oven",
	"tennis racket": "racket",
	"refrigerator":  "refrigerator",
	"tv":            "screen/monitor",
	"sheep":         "sheep/goat",
	"sink":          "sink",
	"skateboard":    "skateboard",
	"skis":          "ski",
	"snowboard":     "snowboard",
	"couch":         "sofa",
	"stop sign":     "stop_sign",
	"suitcase":      "suitcase",
	"surfboard":     "surfboard",
	"dining table":  "table",
	"toilet":        "toilet",
	"teddy bear":    "toy",
	"traffic light": "traffic_light",
	"train":         "train",
	"boat":          "watercraft",
}

// ILSVRC DET synsets. The DET "person" synset shows up as a secondary object in
// many images of other classes, so it is mapped as well.
var vidorFromILSVRC = map[string]string{
	"n00007846": "adult",
	"n02691156": "aircraft",
	"n02419796": "antelope",
	"n02769748": "backpack",
	"n02799071": "ball/sports_ball", // baseball
	"n02802426": "ball/sports_ball", // basketball
	"n03134739": "ball/sports_ball", // croquet ball
	"n03445777": "ball/sports_ball", // golf ball
	"n04118538": "ball/sports_ball", // rugby ball
	"n04254680": "ball/sports_ball", // soccer ball
	"n04409515": "ball/sports_ball", // tennis ball
	"n04540053": "ball/sports_ball", // volleyball
	"n02131653": "bear",
	"n02828884": "bench",
	"n02834778": "bicycle",
	"n01503061": "bird",
	"n04557648": "bottle", // water bottle
	"n04591713": "bottle", // wine bottle
	"n02924116": "bus/truck",
	"n02437136": "camel",
	"n02942699": "camera",
	"n02958343": "car",
	"n02121808": "cat",
	"n02402425": "cattle/cow",
	"n03001627": "chair",
	"n03797390": "cup",
	"n02084071": "dog",
	"n03271574": "electric_fan",
	"n02503517": "elephant",
	"n01443537": "fish", // goldfish
	"n03467517": "guitar",
	"n02342885": "hamster/rat",
	"n02374451": "horse",
	"n03642806": "laptop",
	"n02129165": "lion",
	"n03761084": "microwave",
	"n03790512": "motorcycle",
	"n02510455": "panda",
	"n03928116": "piano",
	"n02395003": "pig",
	"n02324045": "rabbit",
	"n04039381": "racket",
	"n04070727": "refrigerator",
	"n03211117": "screen/monitor",
	"n02411705": "sheep/goat",
	"n04228054": "ski",
	"n01726692": "snake",
	"n04256520": "sofa",
	"n02355227": "squirrel",
	"n04379243": "table",
	"n02129604": "tiger",
	"n04468005": "train",
	"n01662784": "turtle",
	"n04530566": "watercraft",
}
