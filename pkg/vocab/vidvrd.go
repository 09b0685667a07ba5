package vocab

// VidVRD object categories. Category ID = index + 1.
var vidvrdClasses = []string{
	"airplane",
	"antelope",
	"ball",
	"bear",
	"bicycle",
	"bird",
	"bus",
	"car",
	"cattle",
	"dog",
	"domestic_cat",
	"elephant",
	"fox",
	"frisbee",
	"giant_panda",
	"hamster",
	"horse",
	"lion",
	"lizard",
	"monkey",
	"motorcycle",
	"person",
	"rabbit",
	"red_panda",
	"sheep",
	"skateboard",
	"snake",
	"sofa",
	"squirrel",
	"tiger",
	"train",
	"turtle",
	"watercraft",
	"whale",
	"zebra",
}

var vidvrdFromCOCO = map[string]string{
	"airplane":    "airplane",
	"sports ball": "ball",
	"bear":        "bear",
	"bicycle":     "bicycle",
	"bird":        "bird",
	"bus":         "bus",
	"car":         "car",
	"cow":         "cattle",
	"dog":         "dog",
	"cat":         "domestic_cat",
	"elephant":    "elephant",
	"frisbee":     "frisbee",
	"horse":       "horse",
	"motorcycle":  "motorcycle",
	"person":      "person",
	"sheep":       "sheep",
	"skateboard":  "skateboard",
	"couch":       "sofa",
	"train":       "train",
	"boat":        "watercraft",
	"zebra":       "zebra",
}

// VidVRD was built on ILSVRC2015-VID, so its vocabulary contains all 30 VID classes,
// and every one of those is a DET synset.
var vidvrdFromILSVRC = map[string]string{
	"n02691156": "airplane",
	"n02419796": "antelope",
	"n02799071": "ball", // baseball
	"n02802426": "ball", // basketball
	"n04254680": "ball", // soccer ball
	"n04409515": "ball", // tennis ball
	"n04540053": "ball", // volleyball
	"n02131653": "bear",
	"n02834778": "bicycle",
	"n01503061": "bird",
	"n02924116": "bus",
	"n02958343": "car",
	"n02402425": "cattle",
	"n02084071": "dog",
	"n02121808": "domestic_cat",
	"n02503517": "elephant",
	"n02118333": "fox",
	"n02510455": "giant_panda",
	"n02342885": "hamster",
	"n02374451": "horse",
	"n02129165": "lion",
	"n01674464": "lizard",
	"n02484322": "monkey",
	"n03790512": "motorcycle",
	"n00007846": "person",
	"n02324045": "rabbit",
	"n02509815": "red_panda",
	"n02411705": "sheep",
	"n01726692": "snake",
	"n04256520": "sofa",
	"n02355227": "squirrel",
	"n02129604": "tiger",
	"n04468005": "train",
	"n01662784": "turtle",
	"n04530566": "watercraft",
	"n02062744": "whale",
	"n02391049": "zebra",
}
