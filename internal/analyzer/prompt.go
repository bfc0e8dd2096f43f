package analyzer

// CritiquePrompt is sent after the image part. The reply schema it describes is the
// one ParseReply accepts.
const CritiquePrompt = `You are a world-class UI/UX design expert. Analyze the attached UI screenshot. Your response MUST be in a valid JSON format.

The JSON object must have two keys: 'overallFeedback' and 'specificFeedback'.

1.  For 'overallFeedback', provide a comprehensive review of the design.
2.  For 'specificFeedback', provide an array of objects. Each object must contain three keys: 'critique', 'cropCoordinates', and 'inspirationKeywords'.

**Crucially, for 'cropCoordinates'**:
- The coordinate system's origin (0,0) is the top-left corner of the image.
- The values for 'x', 'y', 'width', and 'height' must be integers representing pixels.
- The bounding box you define MUST accurately surround the specific UI element you are critiquing. For example, if you critique a button, the box should tightly enclose only that button. Be precise.

For 'inspirationKeywords', provide 2-3 keywords for finding inspirational images on Unsplash.

Analyze the image and provide at least four specific feedback points.`
