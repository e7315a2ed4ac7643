package server

import (
	"fmt"

	"github.com/dridi71/sarah/pkg/locale"
	"github.com/dridi71/sarah/pkg/model"
	"google.golang.org/genai"
)

const personaFR = `Tu es Sarah, une tutrice IA experte, spécialisée dans le **système éducatif tunisien**. Tu es également proactive. Si tu remarques une lacune dans les connaissances de l'élève, suggère poliment une question de suivi ou un petit quiz pour l'aider à s'améliorer. Commence tes suggestions par '**Suggestion :**'.
Toutes tes réponses, exemples et explications doivent être conformes au **programme officiel tunisien** pour le niveau spécifié.
Lorsque l'on te demande de créer un diagramme, génère la syntaxe Mermaid.js dans un bloc de code ` + "```mermaid" + `.
Lorsque tu écris des équations chimiques ou mathématiques, utilise la syntaxe KaTeX (entourée par $ ou $$).`

const personaAR = `أنتِ سارة، مساعدة تعليمية خبيرة متخصصة في **النظام التعليمي التونسي**. أنتِ أيضًا سباقة. إذا لاحظتِ فجوة في معرفة الطالب، اقترحي بلطف سؤال متابعة أو اختبارًا قصيرًا لمساعدته على التحسن. ابدئي اقتراحاتك بـ '**اقتراح:**'.
يجب أن تكون جميع إجاباتك وأمثلتك وتوضيحاتك متوافقة مع **البرنامج الرسمي التونسي** للمستوى المحدد.
عندما تطلب منك إنشاء رسم بياني، استخدم صيغة Mermaid.js في كتلة تعليمات برمجية ` + "```mermaid" + `.
عندما تكتب معادلات كيميائية أو رياضية، استخدم صيغة KaTeX (محاطة بـ $ أو $$).`

// basePrompt assembles the grounding preamble: strict-corpus instruction,
// attached-file instruction, then the tutor persona. Absent corpus or file
// content (nil pointers) contribute nothing; this is the absent-vs-empty
// distinction the corpus store exposes.
func basePrompt(req *model.ChatRequest) string {
	isArabic := req.Language == locale.Arabic

	var corpusInstruction string
	if req.CorpusContent != nil {
		if isArabic {
			corpusInstruction = fmt.Sprintf("**سياق صارم (قاعدة المعرفة):** يجب أن تبني إجابتك **حصريًا** على الوثائق التالية المقدمة من وزارة التربية التونسية. لا تستشر أي مصدر آخر.\n\n--- بداية الوثائق ---\n%s\n--- نهاية الوثائق ---\n\n", *req.CorpusContent)
		} else {
			corpusInstruction = fmt.Sprintf("**CONTEXTE STRICT (Base de Connaissances):** Tu DOIS baser ta réponse EXCLUSIVEMENT sur les documents suivants fournis par le Ministère de l'Éducation Tunisien. Ne consulte aucune autre source.\n\n--- DÉBUT DES DOCUMENTS ---\n%s\n--- FIN DES DOCUMENTS ---\n\n", *req.CorpusContent)
		}
	}

	var fileInstruction string
	if req.FileContent != nil {
		if isArabic {
			fileInstruction = fmt.Sprintf("**محتوى الملف المرفق:** لقد أرفق المستخدم ملفًا. يجب أن تستخدم محتواه كمصدر أساسي للحقيقة للإجابة على سؤاله.\n\n--- بداية محتوى الملف ---\n%s\n--- نهاية محتوى الملف ---\n\n", *req.FileContent)
		} else {
			fileInstruction = fmt.Sprintf("**CONTENU DU FICHIER JOINT :** L'utilisateur a joint un fichier. Tu dois utiliser son contenu comme source de vérité principale pour répondre à sa question.\n\n--- DÉBUT CONTENU FICHIER ---\n%s\n--- FIN CONTENU FICHIER ---\n\n", *req.FileContent)
		}
	}

	persona := personaFR
	if isArabic {
		persona = personaAR
	}

	return corpusInstruction + fileInstruction + persona + "\n\n"
}

func solvePrompt(req *model.ChatRequest) string {
	if req.Language == locale.Arabic {
		return fmt.Sprintf("%sسؤال المستخدم: \"%s\"\n\nالتعليمات: أجب على السؤال أو قم بحل المشكلة خطوة بخطوة بناءً على السياق المقدم.", basePrompt(req), req.Prompt)
	}
	return fmt.Sprintf("%sQuestion de l'utilisateur: \"%s\"\n\nInstructions : Réponds à la question ou résous le problème étape par étape en te basant sur le contexte fourni.", basePrompt(req), req.Prompt)
}

func explainImagePrompt(req *model.ChatRequest) string {
	if req.Language == locale.Arabic {
		return fmt.Sprintf("%sقدم المستخدم صورة وسؤالاً.\nسؤال المستخدم: \"%s\"\n\nالتعليمات: حلل الصورة وأجب على السؤال.", basePrompt(req), req.Prompt)
	}
	return fmt.Sprintf("%sL'utilisateur a fourni une image et une question.\nQuestion de l'utilisateur: \"%s\"\n\nInstructions : Analyse l'image et réponds à la question.", basePrompt(req), req.Prompt)
}

func quizPrompt(req *model.ChatRequest) string {
	if req.Language == locale.Arabic {
		return fmt.Sprintf("%sالموضوع: %s\nالمستوى: %s\nعدد الأسئلة: %d\nالتعليمات: قم بإنشاء اختبار قصير حول الموضوع المحدد، متوافق مع البرنامج التونسي.", basePrompt(req), req.Prompt, req.Level, req.NumQuestions)
	}
	return fmt.Sprintf("%sSujet : %s\nNiveau : %s\nNombre de questions : %d\nInstructions : Crée un quiz court sur le sujet spécifié, conforme au programme tunisien.", basePrompt(req), req.Prompt, req.Level, req.NumQuestions)
}

// quizSchema constrains quiz generation to the QuizData shape at the
// provider, so the client does not re-validate the document
var quizSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title": {Type: genai.TypeString},
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question":      {Type: genai.TypeString},
					"options":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"correctAnswer": {Type: genai.TypeString},
					"explanation":   {Type: genai.TypeString},
				},
				Required: []string{"question", "options", "correctAnswer", "explanation"},
			},
		},
	},
	Required: []string{"title", "questions"},
}
